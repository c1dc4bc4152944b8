package telemetry

import (
	"log/slog"
	"time"
)

// Phase identifies one stage of a simulation iteration.
type Phase int

// Phases of the spray/deposit/diffuse loop.
const (
	PhaseSpray Phase = iota
	PhaseDeposit
	PhaseDiffuse
	PhaseIceCheck
	PhaseTelemetry
	numPhases
)

var phaseNames = [numPhases]string{
	PhaseSpray:     "spray",
	PhaseDeposit:   "deposit",
	PhaseDiffuse:   "diffuse",
	PhaseIceCheck:  "ice_check",
	PhaseTelemetry: "telemetry",
}

// String returns the phase's log name.
func (p Phase) String() string {
	if p < 0 || p >= numPhases {
		return "unknown"
	}
	return phaseNames[p]
}

// Phases returns every phase in loop order.
func Phases() []Phase {
	out := make([]Phase, numPhases)
	for i := range out {
		out[i] = Phase(i)
	}
	return out
}

// PerfSample holds timing data for a single iteration.
type PerfSample struct {
	Duration time.Duration
	Phases   [numPhases]time.Duration
}

// PerfCollector tracks iteration timing over a rolling window.
type PerfCollector struct {
	windowSize  int
	samples     []PerfSample
	writeIndex  int
	sampleCount int

	current    PerfSample
	iterStart  time.Time
	phaseStart time.Time
	lastPhase  Phase
	inPhase    bool

	// Frame timing (for graphics mode)
	lastFrameTime time.Time
	frameDuration time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize iterations.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize: windowSize,
		samples:    make([]PerfSample, windowSize),
	}
}

// StartIteration begins timing a new iteration.
func (p *PerfCollector) StartIteration() {
	p.iterStart = time.Now()
	p.current = PerfSample{}
	p.inPhase = false
}

// StartPhase ends the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := time.Now()
	if p.inPhase {
		p.current.Phases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
	p.inPhase = true
}

// EndIteration finishes timing the current iteration and records the sample.
func (p *PerfCollector) EndIteration() {
	now := time.Now()
	if p.inPhase {
		p.current.Phases[p.lastPhase] += now.Sub(p.phaseStart)
		p.inPhase = false
	}
	p.current.Duration = now.Sub(p.iterStart)

	p.samples[p.writeIndex] = p.current
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// RecordFrame records frame timing for graphics mode.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrameTime.IsZero() {
		p.frameDuration = now.Sub(p.lastFrameTime)
	}
	p.lastFrameTime = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgIteration time.Duration
	MinIteration time.Duration
	MaxIteration time.Duration

	PhaseAvg [numPhases]time.Duration
	PhasePct [numPhases]float64

	IterationsPerSecond float64

	FrameDuration time.Duration
	FPS           float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	var out PerfStats
	out.FrameDuration = p.frameDuration
	if p.frameDuration > 0 {
		out.FPS = float64(time.Second) / float64(p.frameDuration)
	}
	if p.sampleCount == 0 {
		return out
	}

	var total time.Duration
	var phaseSum [numPhases]time.Duration
	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.Duration
		if i == 0 || s.Duration < out.MinIteration {
			out.MinIteration = s.Duration
		}
		if s.Duration > out.MaxIteration {
			out.MaxIteration = s.Duration
		}
		for ph, d := range s.Phases {
			phaseSum[ph] += d
		}
	}

	out.AvgIteration = total / time.Duration(p.sampleCount)
	for ph := range phaseSum {
		out.PhaseAvg[ph] = phaseSum[ph] / time.Duration(p.sampleCount)
		if out.AvgIteration > 0 {
			out.PhasePct[ph] = float64(out.PhaseAvg[ph]) / float64(out.AvgIteration) * 100
		}
	}
	if out.AvgIteration > 0 {
		out.IterationsPerSecond = float64(time.Second) / float64(out.AvgIteration)
	}
	return out
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_iter_us", s.AvgIteration.Microseconds(),
		"min_iter_us", s.MinIteration.Microseconds(),
		"max_iter_us", s.MaxIteration.Microseconds(),
		"iters_per_sec", s.IterationsPerSecond,
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	for ph, pct := range s.PhasePct {
		if pct > 0.1 {
			attrs = append(attrs, Phase(ph).String()+"_pct", float64(int(pct*10))/10)
		}
	}
	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_iter_us", s.AvgIteration.Microseconds()),
		slog.Int64("min_iter_us", s.MinIteration.Microseconds()),
		slog.Int64("max_iter_us", s.MaxIteration.Microseconds()),
		slog.Float64("iters_per_sec", s.IterationsPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for ph, pct := range s.PhasePct {
		attrs = append(attrs, slog.Float64(Phase(ph).String()+"_pct", pct))
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	Iteration    int     `csv:"iteration"`
	AvgIterUS    int64   `csv:"avg_iter_us"`
	MinIterUS    int64   `csv:"min_iter_us"`
	MaxIterUS    int64   `csv:"max_iter_us"`
	ItersPerSec  float64 `csv:"iters_per_sec"`
	SprayPct     float64 `csv:"spray_pct"`
	DepositPct   float64 `csv:"deposit_pct"`
	DiffusePct   float64 `csv:"diffuse_pct"`
	IceCheckPct  float64 `csv:"ice_check_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(iteration int) PerfStatsCSV {
	return PerfStatsCSV{
		Iteration:    iteration,
		AvgIterUS:    s.AvgIteration.Microseconds(),
		MinIterUS:    s.MinIteration.Microseconds(),
		MaxIterUS:    s.MaxIteration.Microseconds(),
		ItersPerSec:  s.IterationsPerSecond,
		SprayPct:     s.PhasePct[PhaseSpray],
		DepositPct:   s.PhasePct[PhaseDeposit],
		DiffusePct:   s.PhasePct[PhaseDiffuse],
		IceCheckPct:  s.PhasePct[PhaseIceCheck],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
	}
}
