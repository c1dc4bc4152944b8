// Package camera maps plate coordinates to a screen viewport with pan and zoom.
package camera

// Camera controls the viewport onto the plate. Plate y points up, screen y
// points down; the plate never scrolls out of view.
type Camera struct {
	// Position is the view center in plate coordinates
	X, Y float32

	// Zoom level (1.0 = whole plate fits the viewport)
	Zoom float32

	// Viewport rectangle on screen
	ViewX, ViewY, ViewW, ViewH float32

	// Plate dimensions
	PlateW, PlateH float32

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// New creates a camera showing the whole plate inside the given viewport.
func New(viewX, viewY, viewW, viewH, plateW, plateH float32) *Camera {
	return &Camera{
		X:       plateW / 2,
		Y:       plateH / 2,
		Zoom:    1.0,
		ViewX:   viewX,
		ViewY:   viewY,
		ViewW:   viewW,
		ViewH:   viewH,
		PlateW:  plateW,
		PlateH:  plateH,
		MinZoom: 1.0,
		MaxZoom: 16.0,
	}
}

// Scale returns screen pixels per plate unit at the current zoom.
func (c *Camera) Scale() float32 {
	s := c.ViewW / c.PlateW
	if sy := c.ViewH / c.PlateH; sy < s {
		s = sy
	}
	return s * c.Zoom
}

// PlateToScreen converts plate coordinates to screen coordinates.
func (c *Camera) PlateToScreen(px, py float32) (sx, sy float32) {
	s := c.Scale()
	sx = c.ViewX + c.ViewW/2 + (px-c.X)*s
	sy = c.ViewY + c.ViewH/2 - (py-c.Y)*s
	return sx, sy
}

// ScreenToPlate converts screen coordinates to plate coordinates and reports
// whether the point lies on the plate.
func (c *Camera) ScreenToPlate(sx, sy float32) (px, py float32, inside bool) {
	s := c.Scale()
	px = c.X + (sx-c.ViewX-c.ViewW/2)/s
	py = c.Y - (sy-c.ViewY-c.ViewH/2)/s
	inside = px >= 0 && px < c.PlateW && py >= 0 && py < c.PlateH
	return px, py, inside
}

// Resize updates the viewport rectangle.
func (c *Camera) Resize(viewX, viewY, viewW, viewH float32) {
	c.ViewX, c.ViewY = viewX, viewY
	c.ViewW, c.ViewH = viewW, viewH
	c.clampCenter()
}

// Pan moves the view by the given delta in screen pixels.
func (c *Camera) Pan(dx, dy float32) {
	s := c.Scale()
	c.X -= dx / s
	c.Y += dy / s
	c.clampCenter()
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
	c.clampCenter()
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// ZoomAt zooms by factor about a screen point, keeping the plate point
// under it fixed where the bounds allow.
func (c *Camera) ZoomAt(sx, sy, factor float32) {
	px, py, _ := c.ScreenToPlate(sx, sy)
	c.Zoom = clamp(c.Zoom*factor, c.MinZoom, c.MaxZoom)
	s := c.Scale()
	c.X = px - (sx-c.ViewX-c.ViewW/2)/s
	c.Y = py + (sy-c.ViewY-c.ViewH/2)/s
	c.clampCenter()
}

// Reset returns the camera to the default position and zoom.
func (c *Camera) Reset() {
	c.X = c.PlateW / 2
	c.Y = c.PlateH / 2
	c.Zoom = 1.0
}

// VisibleBounds returns the visible part of the plate in plate coordinates.
func (c *Camera) VisibleBounds() (minX, minY, maxX, maxY float32) {
	s := c.Scale()
	halfW := c.ViewW / (2 * s)
	halfH := c.ViewH / (2 * s)

	minX = clamp(c.X-halfW, 0, c.PlateW)
	maxX = clamp(c.X+halfW, 0, c.PlateW)
	minY = clamp(c.Y-halfH, 0, c.PlateH)
	maxY = clamp(c.Y+halfH, 0, c.PlateH)
	return
}

// clampCenter keeps the view over the plate. An axis that fits entirely
// stays centered.
func (c *Camera) clampCenter() {
	s := c.Scale()
	c.X = clampAxis(c.X, c.ViewW/(2*s), c.PlateW)
	c.Y = clampAxis(c.Y, c.ViewH/(2*s), c.PlateH)
}

func clampAxis(center, half, size float32) float32 {
	if 2*half >= size {
		return size / 2
	}
	return clamp(center, half, size-half)
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
