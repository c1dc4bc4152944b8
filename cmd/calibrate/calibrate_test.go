package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/icing/config"
	"github.com/pthm-cable/icing/sim"
)

func TestLogSpaceNormalize(t *testing.T) {
	pv := NewParamVector(config.Default(), false)
	spec := pv.Specs[0]

	mid := math.Sqrt(spec.Min * spec.Max)
	n := pv.Normalize([]float64{mid})
	if math.Abs(n[0]-0.5) > 1e-12 {
		t.Errorf("geometric midpoint normalised to %g, want 0.5", n[0])
	}
	raw := pv.Denormalize([]float64{0.25})
	if back := pv.Normalize(raw); math.Abs(back[0]-0.25) > 1e-12 {
		t.Errorf("round trip gave %g", back[0])
	}
}

func TestApplyClampsAndDerives(t *testing.T) {
	cfg := config.Default()
	pv := NewParamVector(cfg, true)
	pv.ApplyToConfig(cfg, []float64{1e9, 1e-3})

	if cfg.Spray.CoolingPerDrop != pv.Specs[0].Max {
		t.Errorf("cooling = %g, want clamped to %g", cfg.Spray.CoolingPerDrop, pv.Specs[0].Max)
	}
	want := 1e-3 * cfg.Thermal.DT / (cfg.Derived.DX * cfg.Derived.DX)
	if math.Abs(cfg.Derived.FoX-want) > 1e-15 {
		t.Errorf("FoX = %g, want %g after diffusivity change", cfg.Derived.FoX, want)
	}
}

func TestDropsToIce(t *testing.T) {
	if got := dropsToIce(sim.Result{IceFormed: true, DropletsAtIce: 300, Droplets: 300}); got != 300 {
		t.Errorf("iced run = %g, want 300", got)
	}
	if got := dropsToIce(sim.Result{Droplets: 1000}); got != 2000 {
		t.Errorf("ice-free run = %g, want twice the budget", got)
	}
}

func TestLossTerm(t *testing.T) {
	if lossTerm(500, 500) != 0 {
		t.Error("hitting the target should cost nothing")
	}
	if a, b := lossTerm(250, 500), lossTerm(1000, 500); math.Abs(a-b) > 1e-12 {
		t.Errorf("loss should be symmetric in log space: %g vs %g", a, b)
	}
}

func smallBase() *config.Config {
	cfg := config.Default()
	cfg.Grid.NX, cfg.Grid.NY = 10, 5
	cfg.Spray.BatchSize = 50
	cfg.Spray.Budget = 2000
	cfg.Run.Workers = 1
	cfg.ComputeDerived()
	return cfg
}

func TestEvaluatePrefersColderDrops(t *testing.T) {
	base := smallBase()
	pv := NewParamVector(base, false)
	fe := NewFitnessEvaluator(pv, []int64{1, 2}, 200, base)

	// Far too weak: no ice within the budget.
	weak := fe.Evaluate([]float64{1e-4})
	if ev := fe.Last(); ev.IceRate != 0 {
		t.Fatalf("weak drops froze the plate: %+v", ev)
	}
	// Strong enough to freeze within the first few batches.
	strong := fe.Evaluate([]float64{5})
	if ev := fe.Last(); ev.IceRate != 1 {
		t.Fatalf("strong drops did not freeze: %+v", ev)
	}
	if !(strong < weak) {
		t.Errorf("strong loss %g should beat weak loss %g", strong, weak)
	}
}
