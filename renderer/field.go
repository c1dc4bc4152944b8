// Package renderer draws the plate temperature field with raylib.
package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/icing/camera"
	"github.com/pthm-cable/icing/palette"
	"github.com/pthm-cable/icing/systems"
)

// View selects what the field texture shows.
type View int

const (
	ViewTemperature View = iota // cold-to-warm temperature map
	ViewIceMask                 // frozen cells only
)

func (v View) String() string {
	if v == ViewIceMask {
		return "ice mask"
	}
	return "temperature"
}

// Next cycles to the other view.
func (v View) Next() View {
	if v == ViewTemperature {
		return ViewIceMask
	}
	return ViewTemperature
}

// FieldRenderer keeps one texel per grid cell. Texture x follows the grid's
// first axis and the y axis is flipped so the origin sits at the lower left.
type FieldRenderer struct {
	nx, ny  int
	pixels  []color.RGBA
	texture rl.Texture2D
	palette *palette.Palette

	// Colour range used by the last Update in temperature view.
	lo, hi float64

	initialized bool
}

// NewFieldRenderer creates a renderer for an nx by ny grid.
func NewFieldRenderer(nx, ny int) *FieldRenderer {
	return &FieldRenderer{
		nx:      nx,
		ny:      ny,
		pixels:  make([]color.RGBA, nx*ny),
		palette: palette.New(),
	}
}

// Init allocates the GPU texture (must be called after the raylib window is created).
func (r *FieldRenderer) Init() {
	if r.initialized {
		return
	}
	img := rl.GenImageColor(r.nx, r.ny, rl.Black)
	r.texture = rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(r.texture, rl.FilterPoint)
	rl.UnloadImage(img)
	r.initialized = true
}

// Update uploads the grid's current field. The temperature view scales
// colours to the field's own min and max, so contrast survives as the plate
// cools.
func (r *FieldRenderer) Update(g *systems.Grid, view View, freezing float64) {
	if !r.initialized {
		r.Init()
	}
	nx, ny := g.Dims()
	if nx != r.nx || ny != r.ny {
		return
	}

	values := g.Values()
	switch view {
	case ViewIceMask:
		for i := 0; i < nx; i++ {
			row := values[i*ny : (i+1)*ny]
			for j, t := range row {
				r.pixels[(ny-1-j)*nx+i] = palette.Mask(t < freezing)
			}
		}
	default:
		r.lo, r.hi = fieldRange(values)
		for i := 0; i < nx; i++ {
			row := values[i*ny : (i+1)*ny]
			for j, t := range row {
				r.pixels[(ny-1-j)*nx+i] = r.palette.Color(t, r.lo, r.hi)
			}
		}
	}

	rl.UpdateTexture(r.texture, r.pixels)
}

// Range returns the colour range of the last temperature update.
func (r *FieldRenderer) Range() (lo, hi float64) { return r.lo, r.hi }

// Palette returns the temperature palette.
func (r *FieldRenderer) Palette() *palette.Palette { return r.palette }

// Draw renders the part of the plate visible through cam and returns the
// screen rectangle it covers.
func (r *FieldRenderer) Draw(cam *camera.Camera) rl.Rectangle {
	minX, minY, maxX, maxY := cam.VisibleBounds()
	sx0, sy0 := cam.PlateToScreen(minX, maxY)
	sx1, sy1 := cam.PlateToScreen(maxX, minY)
	dst := rl.Rectangle{X: sx0, Y: sy0, Width: sx1 - sx0, Height: sy1 - sy0}
	if !r.initialized {
		return dst
	}

	// Texel rows run top-down from the plate's upper edge.
	tx := float32(r.nx) / cam.PlateW
	ty := float32(r.ny) / cam.PlateH
	src := rl.Rectangle{
		X:      minX * tx,
		Y:      (cam.PlateH - maxY) * ty,
		Width:  (maxX - minX) * tx,
		Height: (maxY - minY) * ty,
	}
	rl.DrawTexturePro(r.texture, src, dst, rl.Vector2{}, 0, rl.White)
	rl.DrawRectangleLinesEx(dst, 1, rl.Color{R: 60, G: 70, B: 80, A: 255})
	return dst
}

// Unload frees GPU resources.
func (r *FieldRenderer) Unload() {
	if !r.initialized {
		return
	}
	rl.UnloadTexture(r.texture)
	r.initialized = false
}

func fieldRange(values []float64) (lo, hi float64) {
	if len(values) == 0 {
		return 0, 0
	}
	return floats.Min(values), floats.Max(values)
}
