// Package sim drives the spray, deposit, diffuse, ice-check loop.
package sim

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pthm-cable/icing/config"
	"github.com/pthm-cable/icing/systems"
	"github.com/pthm-cable/icing/telemetry"
)

// Options configures run-level behaviour outside the physics config.
type Options struct {
	OutputDir     string                         // CSV/YAML output directory ("" disables)
	SnapshotDir   string                         // field snapshots on bookmarks and at stop ("" disables)
	LogStats      bool                           // log iteration and perf stats via slog
	StatsCallback func(telemetry.IterationStats) // called on every stats sample

	// Source overrides the seeded uniform sprayer, e.g. for scripted impacts.
	Source systems.DropletSource
}

// Simulation owns the grid and the stages that act on it.
type Simulation struct {
	cfg   *config.Config
	state State

	grid      *systems.Grid
	kernel    systems.Kernel
	sprayer   systems.DropletSource
	depositor *systems.Depositor
	diffuser  *systems.Diffuser
	pool      *systems.WorkerPool
	batch     *systems.Batch

	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	perfEvery int
	detector  *telemetry.BookmarkDetector
	bookmarks []telemetry.Bookmark
	output    *telemetry.OutputManager
	opts      Options
	started   time.Time
}

// bookmarkHistory is the number of stats samples in the rapid-cooling average.
const bookmarkHistory = 10

// New builds a simulation from cfg. The config is cloned, so later changes
// to cfg do not affect the run.
func New(cfg *config.Config, opts Options) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg = cfg.Clone()
	cfg.ComputeDerived()

	weights, err := cfg.KernelWeights()
	if err != nil {
		return nil, fmt.Errorf("reading kernel weights: %w", err)
	}
	kernel, err := systems.NewKernel(weights)
	if err != nil {
		return nil, fmt.Errorf("building impact kernel: %w", err)
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	var pool *systems.WorkerPool
	if cfg.Run.Workers != 1 {
		pool = systems.NewWorkerPool(cfg.Run.Workers)
	}

	grid := systems.NewGrid(cfg.Grid.NX, cfg.Grid.NY, cfg.Plate.LengthX, cfg.Plate.LengthY, cfg.Plate.InitialTemperature)
	var sprayer systems.DropletSource = opts.Source
	if sprayer == nil {
		sprayer = systems.NewSprayer(cfg.Plate.LengthX, cfg.Plate.LengthY, rand.New(rand.NewSource(cfg.Spray.Seed)))
	}

	perfEvery := cfg.Telemetry.PerfWindow
	if perfEvery < 1 {
		perfEvery = 1
	}

	s := &Simulation{
		cfg:       cfg,
		state:     State{Budget: cfg.Spray.Budget},
		grid:      grid,
		kernel:    kernel,
		sprayer:   sprayer,
		depositor: systems.NewDepositor(pool, cfg.Run.ParallelThreshold),
		diffuser:  systems.NewDiffuser(pool, cfg.Run.ParallelThreshold),
		pool:      pool,
		batch:     &systems.Batch{},
		collector: telemetry.NewCollector(cfg.Telemetry.StatsEvery, cfg.Plate.FreezingPoint),
		perf:      telemetry.NewPerfCollector(perfEvery),
		perfEvery: perfEvery,
		detector:  telemetry.NewBookmarkDetector(bookmarkHistory, cfg.Plate.InitialTemperature, cfg.Plate.FreezingPoint),
		output:    output,
		opts:      opts,
		started:   time.Now(),
	}
	return s, nil
}

// Step runs one iteration and returns the resulting status. Stepping a
// stopped simulation does nothing.
//
// An exhausted budget stops the run before any spraying, so a zero budget
// leaves the initial field untouched. Otherwise a full batch is sprayed,
// deposited up to the remaining budget, and diffused; the ice check then
// runs on the diffused field and takes precedence over budget exhaustion.
func (s *Simulation) Step() Status {
	if s.state.Status == StatusStopped {
		return StatusStopped
	}
	if s.state.BudgetRemaining() == 0 {
		s.stop(ReasonBudgetExhausted)
		return s.state.Status
	}

	s.perf.StartIteration()

	s.perf.StartPhase(telemetry.PhaseSpray)
	s.batch = s.sprayer.Spray(s.cfg.Spray.BatchSize, s.batch)

	s.perf.StartPhase(telemetry.PhaseDeposit)
	res := s.depositor.Deposit(s.grid, s.batch, s.kernel, s.cfg.Spray.CoolingPerDrop, s.state.BudgetRemaining())
	s.state.Droplets += res.Applied
	s.collector.RecordDeposit(res.Applied, res.Removed, res.Spilled)

	s.perf.StartPhase(telemetry.PhaseDiffuse)
	s.diffuser.Diffuse(s.grid, s.cfg.Derived.FoX, s.cfg.Derived.FoY, s.cfg.Thermal.Substeps)

	s.perf.StartPhase(telemetry.PhaseIceCheck)
	iced := s.grid.AnyBelow(s.cfg.Plate.FreezingPoint)
	s.state.Iteration++

	next := ReasonNone
	switch {
	case iced:
		next = ReasonIceDetected
	case s.state.BudgetRemaining() == 0:
		next = ReasonBudgetExhausted
	}

	s.perf.StartPhase(telemetry.PhaseTelemetry)
	if s.collector.ShouldFlush(s.state.Iteration) || next != ReasonNone {
		s.flushStats()
	}
	s.perf.EndIteration()
	if s.state.Iteration%s.perfEvery == 0 {
		s.flushPerf()
	}

	if next != ReasonNone {
		s.stop(next)
	}
	return s.state.Status
}

// Run steps until the simulation stops and returns the final result.
func (s *Simulation) Run() Result {
	for s.Step() == StatusRunning {
	}
	return s.Snapshot()
}

// Abort stops a running simulation with ReasonIterationLimit, writing the
// summary and final snapshot as a natural stop would. Aborting a stopped
// simulation does nothing.
func (s *Simulation) Abort() {
	if s.state.Status == StatusStopped {
		return
	}
	s.stop(ReasonIterationLimit)
}

// stop performs the terminal transition and writes the run summary.
func (s *Simulation) stop(reason Reason) {
	s.state.Status = StatusStopped
	s.state.Reason = reason
	if reason == ReasonIceDetected {
		s.state.DropletsAtIce = s.state.Droplets
	}

	mask := s.grid.Mask(s.cfg.Plate.FreezingPoint)
	summary := telemetry.RunSummary{
		Seed:           s.cfg.Spray.Seed,
		Reason:         reason.String(),
		IceFormed:      reason == ReasonIceDetected,
		Droplets:       s.state.Droplets,
		DropletsAtIce:  s.state.DropletsAtIce,
		Iterations:     s.state.Iteration,
		IceCells:       mask.Count(),
		MinTemperature: s.grid.Min(),
		ElapsedMS:      time.Since(s.started).Milliseconds(),
	}
	if err := s.output.WriteSummary(summary); err != nil {
		slog.Error("failed to write summary", "error", err)
	}
	s.saveSnapshot(nil)
}

func (s *Simulation) flushStats() {
	stats := s.collector.Flush(s.state.Iteration, s.state.Droplets, s.grid.Values())
	if s.opts.LogStats {
		stats.LogStats()
	}
	if s.opts.StatsCallback != nil {
		s.opts.StatsCallback(stats)
	}
	if err := s.output.WriteIteration(stats); err != nil {
		slog.Error("failed to write iteration stats", "error", err)
	}

	for _, bm := range s.detector.Check(stats) {
		s.bookmarks = append(s.bookmarks, bm)
		if s.opts.LogStats {
			bm.LogBookmark()
		}
		if err := s.output.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
		s.saveSnapshot(&bm)
	}
}

// saveSnapshot writes the current field to the snapshot directory, tagged
// with bm, or as the final snapshot when bm is nil.
func (s *Simulation) saveSnapshot(bm *telemetry.Bookmark) {
	if s.opts.SnapshotDir == "" {
		return
	}
	snap := s.FieldSnapshot()
	snap.Bookmark = bm
	if bm == nil {
		snap.Reason = s.state.Reason.String()
	}
	if _, err := telemetry.SaveSnapshot(snap, s.opts.SnapshotDir); err != nil {
		slog.Error("failed to save snapshot", "error", err)
	}
}

// FieldSnapshot captures the current field and run position.
func (s *Simulation) FieldSnapshot() *telemetry.Snapshot {
	values := s.grid.Values()
	temps := make([]float64, len(values))
	copy(temps, values)
	lx, ly := s.grid.Extent()
	return &telemetry.Snapshot{
		Version:       telemetry.SnapshotVersion,
		Seed:          s.cfg.Spray.Seed,
		NX:            s.grid.NX,
		NY:            s.grid.NY,
		LengthX:       lx,
		LengthY:       ly,
		FreezingPoint: s.cfg.Plate.FreezingPoint,
		Iteration:     s.state.Iteration,
		Droplets:      s.state.Droplets,
		Temperatures:  temps,
	}
}

// Bookmarks returns the bookmarks triggered so far.
func (s *Simulation) Bookmarks() []telemetry.Bookmark { return s.bookmarks }

func (s *Simulation) flushPerf() {
	stats := s.perf.Stats()
	if s.opts.LogStats {
		stats.LogStats()
	}
	if err := s.output.WritePerf(stats, s.state.Iteration); err != nil {
		slog.Error("failed to write perf stats", "error", err)
	}
}

// Snapshot returns the output contract for the current field.
func (s *Simulation) Snapshot() Result {
	return Result{
		Field:          s.grid.Field(),
		Mask:           s.grid.Mask(s.cfg.Plate.FreezingPoint),
		Reason:         s.state.Reason,
		Droplets:       s.state.Droplets,
		DropletsAtIce:  s.state.DropletsAtIce,
		Iterations:     s.state.Iteration,
		IceFormed:      s.state.Reason == ReasonIceDetected,
		MinTemperature: s.grid.Min(),
	}
}

// State returns a copy of the run bookkeeping.
func (s *Simulation) State() State { return s.state }

// Grid exposes the live field for renderers. Do not mutate it.
func (s *Simulation) Grid() *systems.Grid { return s.grid }

// Config returns the simulation's private config copy.
func (s *Simulation) Config() *config.Config { return s.cfg }

// Perf returns the rolling performance collector.
func (s *Simulation) Perf() *telemetry.PerfCollector { return s.perf }

// Close stops worker goroutines and closes output files.
func (s *Simulation) Close() error {
	s.pool.Close()
	return s.output.Close()
}
