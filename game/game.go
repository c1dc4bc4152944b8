// Package game runs the icing simulation inside a raylib viewer, or headless.
package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/icing/camera"
	"github.com/pthm-cable/icing/config"
	"github.com/pthm-cable/icing/renderer"
	"github.com/pthm-cable/icing/sim"
	"github.com/pthm-cable/icing/telemetry"
	"github.com/pthm-cable/icing/ui"
)

const (
	maxSpeed   = 64
	panelWidth = 280
)

// Options configures a game instance.
type Options struct {
	LogStats    bool
	OutputDir   string
	SnapshotDir string
	Headless    bool

	// IterationsPerFrame overrides the config when > 0.
	IterationsPerFrame int
}

// Game holds the simulation and, in graphical mode, its viewer state.
type Game struct {
	sim  *sim.Simulation
	cfg  *config.Config
	opts Options

	// Latest stats sample, updated from the simulation's callback.
	latest telemetry.IterationStats

	// Rendering (nil when headless)
	camera   *camera.Camera
	field    *renderer.FieldRenderer
	hud      *ui.HUD
	stats    *ui.StatsPanel
	perf     *ui.PerfPanel
	controls *ui.ControlsPanel
	overlays *ui.OverlayRegistry

	// State
	view     renderer.View
	paused   bool
	stepOnce bool
	speed    int
	reported bool

	screenWidth, screenHeight float32
}

// NewGameWithOptions builds the simulation from cfg. Graphical mode must be
// created after the raylib window exists.
func NewGameWithOptions(cfg *config.Config, opts Options) (*Game, error) {
	g := &Game{
		cfg:   cfg,
		opts:  opts,
		speed: cfg.Screen.IterationsPerFrame,
	}
	if opts.IterationsPerFrame > 0 {
		g.speed = opts.IterationsPerFrame
	}
	g.speed = max(1, min(g.speed, maxSpeed))

	s, err := sim.New(cfg, sim.Options{
		OutputDir:     opts.OutputDir,
		SnapshotDir:   opts.SnapshotDir,
		LogStats:      opts.LogStats,
		StatsCallback: func(st telemetry.IterationStats) { g.latest = st },
	})
	if err != nil {
		return nil, fmt.Errorf("creating simulation: %w", err)
	}
	g.sim = s

	if !opts.Headless {
		g.initRendering()
	}
	return g, nil
}

func (g *Game) initRendering() {
	g.screenWidth = float32(g.cfg.Screen.Width)
	g.screenHeight = float32(g.cfg.Screen.Height)

	vx, vy, vw, vh := g.viewport()
	g.camera = camera.New(vx, vy, vw, vh, float32(g.cfg.Plate.LengthX), float32(g.cfg.Plate.LengthY))
	g.field = renderer.NewFieldRenderer(g.cfg.Grid.NX, g.cfg.Grid.NY)
	g.field.Init()
	g.hud = ui.NewHUD()
	g.stats = ui.NewStatsPanel(0, 0, panelWidth)
	g.perf = ui.NewPerfPanel(0, 0, panelWidth)
	g.controls = ui.NewControlsPanel(0, 0, panelWidth)
	g.overlays = ui.NewOverlayRegistry()
}

// Update handles input and advances the simulation by the current speed.
func (g *Game) Update() {
	g.handleInput()
	g.sim.Perf().RecordFrame()

	switch {
	case g.stepOnce:
		g.stepOnce = false
		g.step(1)
	case !g.paused:
		g.step(g.speed)
	}
}

// UpdateHeadless advances one iteration and returns the resulting status.
func (g *Game) UpdateHeadless() sim.Status {
	return g.step(1)
}

func (g *Game) step(n int) sim.Status {
	st := g.sim.State().Status
	for i := 0; i < n && st == sim.StatusRunning; i++ {
		st = g.sim.Step()
	}
	if st == sim.StatusStopped && !g.reported {
		g.reported = true
		g.reportResult()
	}
	return st
}

// reportResult logs the final outcome once.
func (g *Game) reportResult() {
	res := g.sim.Snapshot()
	if res.IceFormed {
		slog.Info("ice formed",
			"droplets", res.DropletsAtIce,
			"iterations", res.Iterations,
			"ice_cells", res.Mask.Count(),
			"min_temp", res.MinTemperature,
		)
		return
	}
	slog.Info("no ice formed",
		"droplets", res.Droplets,
		"iterations", res.Iterations,
		"reason", res.Reason.String(),
		"min_temp", res.MinTemperature,
	)
}

// Halt stops a running simulation at the iteration limit and logs the
// outcome. It does nothing once the simulation has stopped.
func (g *Game) Halt() {
	if g.Stopped() {
		return
	}
	g.sim.Abort()
	if !g.reported {
		g.reported = true
		g.reportResult()
	}
}

// Stopped reports whether the simulation reached a terminal state.
func (g *Game) Stopped() bool {
	return g.sim.State().Status == sim.StatusStopped
}

// Iteration returns the number of completed iterations.
func (g *Game) Iteration() int {
	return g.sim.State().Iteration
}

// Result returns the current output contract.
func (g *Game) Result() sim.Result {
	return g.sim.Snapshot()
}

// Unload releases GPU resources, workers and output files.
func (g *Game) Unload() {
	if g.field != nil {
		g.field.Unload()
	}
	if err := g.sim.Close(); err != nil {
		slog.Error("failed to close simulation output", "error", err)
	}
}
