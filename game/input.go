package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/icing/ui"
)

// handleInput processes keyboard input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}
	if rl.IsKeyPressed(rl.KeyV) {
		g.view = g.view.Next()
	}
	if rl.IsKeyPressed(rl.KeyN) {
		g.stepOnce = true
	}

	// Iterations per frame with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) {
		g.slower()
	}
	if rl.IsKeyPressed(rl.KeyPeriod) {
		g.faster()
	}

	g.overlays.HandleKeys()
	g.handleCameraInput()
}

// handleCameraInput processes plate zoom and pan controls.
func (g *Game) handleCameraInput() {
	if rl.IsKeyPressed(rl.KeyR) {
		g.camera.Reset()
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		mouse := rl.GetMousePosition()
		factor := float32(1.15)
		if wheel < 0 {
			factor = 1 / factor
		}
		g.camera.ZoomAt(mouse.X, mouse.Y, factor)
	}

	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		delta := rl.GetMouseDelta()
		g.camera.Pan(delta.X, delta.Y)
	}
}

// applyActions applies HUD button presses from the last frame.
func (g *Game) applyActions(act ui.HUDActions) {
	if act.TogglePause {
		g.paused = !g.paused
	}
	if act.ToggleView {
		g.view = g.view.Next()
	}
	if act.Step {
		g.stepOnce = true
	}
	if act.Faster {
		g.faster()
	}
	if act.Slower {
		g.slower()
	}
}

func (g *Game) faster() {
	g.speed = min(g.speed*2, maxSpeed)
}

func (g *Game) slower() {
	g.speed = max(g.speed/2, 1)
}

// handleResize tracks window size changes for layout.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	g.screenWidth = float32(rl.GetScreenWidth())
	g.screenHeight = float32(rl.GetScreenHeight())
	g.camera.Resize(g.viewport())
}
