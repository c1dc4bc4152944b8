package ui

import (
	"fmt"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/icing/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title      string
	Iteration  int
	Droplets   int
	Budget     int
	Status     string
	Reason     string
	View       string
	Speed      int
	FPS        int32
	Paused     bool
	IceFormed  bool
	AtIce      int
	PanelX     int32
	PanelWidth int32
}

// HUDActions reports which HUD buttons were pressed this frame.
type HUDActions struct {
	TogglePause bool
	ToggleView  bool
	Step        bool
	Faster      bool
	Slower      bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD and its buttons, starting at y, and returns the
// pressed buttons and the Y below the HUD.
func (h *HUD) Draw(data HUDData, y int32) (HUDActions, int32) {
	r := h.renderer
	x := data.PanelX
	var act HUDActions

	rl.DrawText(data.Title, x, y, 20, rl.White)
	y += 28

	y = r.DrawLabelValue(x, y, "Iteration", fmt.Sprintf("%d", data.Iteration))
	y = r.DrawLabelValue(x, y, "Droplets", fmt.Sprintf("%d / %d", data.Droplets, data.Budget))
	if data.Budget > 0 {
		y = r.DrawBar(x, y, "Budget used", float32(data.Droplets)/float32(data.Budget), 0.9, data.PanelWidth)
	}
	y = r.DrawLabelValue(x, y, "Speed", fmt.Sprintf("%dx | %d FPS", data.Speed, data.FPS))
	y = r.DrawLabelValue(x, y, "View", data.View)

	statusText, statusColor := "Running", rl.Yellow
	switch {
	case data.Status == "stopped" && data.IceFormed:
		statusText, statusColor = fmt.Sprintf("Ice formed after %d droplets", data.AtIce), rl.SkyBlue
	case data.Status == "stopped":
		statusText, statusColor = "Stopped: "+data.Reason, rl.Orange
	case data.Paused:
		statusText = "PAUSED"
	}
	rl.DrawText(statusText, x, y, r.Theme.FontSize, statusColor)
	y += r.Theme.LineHeight + 6

	bw := (data.PanelWidth - 10) / 2
	pauseLabel := "Pause"
	if data.Paused {
		pauseLabel = "Resume"
	}
	if gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(bw), Height: 26}, pauseLabel) {
		act.TogglePause = true
	}
	if gui.Button(rl.Rectangle{X: float32(x + bw + 10), Y: float32(y), Width: float32(bw), Height: 26}, "Toggle View") {
		act.ToggleView = true
	}
	y += 32

	sw := (data.PanelWidth - 20) / 3
	if gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(sw), Height: 26}, "Step") {
		act.Step = true
	}
	if gui.Button(rl.Rectangle{X: float32(x + sw + 10), Y: float32(y), Width: float32(sw), Height: 26}, "Slower") {
		act.Slower = true
	}
	if gui.Button(rl.Rectangle{X: float32(x + 2*(sw+10)), Y: float32(y), Width: float32(sw), Height: 26}, "Faster") {
		act.Faster = true
	}
	y += 36

	return act, y
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// StatsPanel renders the latest field statistics sample.
type StatsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewStatsPanel creates a new field stats panel.
func NewStatsPanel(x, y, width int32) *StatsPanel {
	return &StatsPanel{renderer: NewRenderer(), x: x, y: y, width: width}
}

// SetPosition updates the panel position.
func (s *StatsPanel) SetPosition(x, y int32) {
	s.x = x
	s.y = y
}

// Draw renders the panel.
func (s *StatsPanel) Draw(st telemetry.IterationStats) {
	r := s.renderer
	padding := r.Theme.Padding
	panelHeight := r.Theme.LineHeight*10 + padding*2 + 4
	r.DrawPanel(s.x, s.y, s.width, panelHeight)

	x := s.x + padding
	y := r.DrawTitle(x, s.y+padding, fmt.Sprintf("Field @ %d", st.Iteration))
	y = r.DrawLabelValue(x, y, "Min", fmt.Sprintf("%.4f", st.MinTemp))
	y = r.DrawLabelValue(x, y, "Mean", fmt.Sprintf("%.4f", st.MeanTemp))
	y = r.DrawLabelValue(x, y, "Max", fmt.Sprintf("%.4f", st.MaxTemp))
	y = r.DrawLabelValue(x, y, "P10 / P50", fmt.Sprintf("%.3f / %.3f", st.P10Temp, st.P50Temp))
	y = r.DrawLabelValue(x, y, "P90", fmt.Sprintf("%.3f", st.P90Temp))
	y = r.DrawLabelValue(x, y, "Applied", fmt.Sprintf("%d", st.Applied))
	y = r.DrawLabelValue(x, y, "Spilled", fmt.Sprintf("%.3g", st.Spilled))
	y = r.DrawLabelValue(x, y, "Ice cells", fmt.Sprintf("%d", st.IceCells))
	r.DrawBar(x, y, "Ice fraction", float32(st.IceFraction), 0, s.width-padding*2)
}

// PerfPanel renders per-stage iteration timing.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y, width int32) *PerfPanel {
	return &PerfPanel{renderer: NewRenderer(), x: x, y: y, width: width}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	r := p.renderer
	padding := r.Theme.Padding
	phases := telemetry.Phases()
	panelHeight := r.Theme.LineHeight*int32(len(phases)+3) + padding*2 + 4
	r.DrawPanel(p.x, p.y, p.width, panelHeight)

	x := p.x + padding
	y := r.DrawTitle(x, p.y+padding, "Stage Timing")
	y = r.DrawLabelValue(x, y, "Iteration", stats.AvgIteration.Round(time.Microsecond).String())
	y = r.DrawLabelValue(x, y, "Iter/s", fmt.Sprintf("%.1f", stats.IterationsPerSecond))
	for _, ph := range phases {
		label := fmt.Sprintf("%s %s", ph, stats.PhaseAvg[ph].Round(time.Microsecond))
		y = r.DrawBar(x, y, label, float32(stats.PhasePct[ph]/100), 0.5, p.width-padding*2)
	}
}
