package game

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/icing/renderer"
	"github.com/pthm-cable/icing/sim"
	"github.com/pthm-cable/icing/ui"
)

const (
	margin       = 30
	colorbarW    = 18
	colorbarGap  = 60
	controlsText = "[SPACE] Pause  [N] Step  [V] View  [,/.] Speed  [Wheel/RMB] Zoom/Pan  [R] Reset view  [C/S/P/O] Overlays"
)

// viewport returns the screen area left of the panel reserved for the plate.
func (g *Game) viewport() (x, y, w, h float32) {
	w = g.screenWidth - panelWidth - 2*margin - colorbarGap
	h = g.screenHeight - 2*margin - 20
	return margin, margin, max(w, 1), max(h, 1)
}

// Draw renders the field and the UI.
func (g *Game) Draw() {
	freezing := g.cfg.Plate.FreezingPoint
	g.field.Update(g.sim.Grid(), g.view, freezing)

	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 12, G: 14, B: 18, A: 255})

	plate := g.field.Draw(g.camera)
	g.drawLegend(plate)
	g.drawHover()

	g.drawPanel()
	g.hud.DrawControls(int32(g.screenHeight), controlsText)

	rl.EndDrawing()
}

func (g *Game) drawLegend(plate rl.Rectangle) {
	if !g.overlays.IsEnabled(ui.OverlayColorbar) {
		return
	}
	x := int32(plate.X + plate.Width + 16)
	y := int32(plate.Y)
	if g.view == renderer.ViewIceMask {
		renderer.DrawMaskLegend(x, y)
		return
	}
	lo, hi := g.field.Range()
	renderer.DrawColorbar(x, y, colorbarW, int32(plate.Height), g.field.Palette(), lo, hi, "T")
}

// drawHover shows the temperature of the cell under the mouse.
func (g *Game) drawHover() {
	mouse := rl.GetMousePosition()
	px, py, inside := g.camera.ScreenToPlate(mouse.X, mouse.Y)
	if !inside {
		return
	}
	grid := g.sim.Grid()
	i, j := grid.CellIndex(float64(px), float64(py))
	t := grid.At(i, j)
	dx, dy := grid.Spacing()
	ui.DrawTooltip(int32(mouse.X)+14, int32(mouse.Y)+14, []string{
		fmt.Sprintf("cell (%d, %d) %.3gx%.3g", i, j, dx, dy),
		fmt.Sprintf("x=%.4f y=%.4f", px, py),
		fmt.Sprintf("T=%.4f", t),
	}, t < g.cfg.Plate.FreezingPoint)
}

func (g *Game) drawPanel() {
	x := int32(g.screenWidth) - panelWidth - 10
	st := g.sim.State()

	act, y := g.hud.Draw(ui.HUDData{
		Title:      "Plate Icing",
		Iteration:  st.Iteration,
		Droplets:   st.Droplets,
		Budget:     st.Budget,
		Status:     st.Status.String(),
		Reason:     st.Reason.String(),
		View:       g.view.String(),
		Speed:      g.speed,
		FPS:        rl.GetFPS(),
		Paused:     g.paused,
		IceFormed:  st.Reason == sim.ReasonIceDetected,
		AtIce:      st.DropletsAtIce,
		PanelX:     x,
		PanelWidth: panelWidth,
	}, 10)
	g.applyActions(act)

	switch {
	case g.overlays.IsEnabled(ui.OverlayStats):
		g.stats.SetPosition(x, y)
		g.stats.Draw(g.latest)
		y += 210
	case g.overlays.IsEnabled(ui.OverlayPerf):
		g.perf.SetPosition(x, y)
		g.perf.Draw(g.sim.Perf().Stats())
		y += 180
	}

	if g.overlays.IsEnabled(ui.OverlayControls) {
		g.controls.SetPosition(x, y)
		g.controls.Draw(g.overlays)
	}
}
