package game

import (
	"testing"

	"github.com/pthm-cable/icing/config"
	"github.com/pthm-cable/icing/sim"
)

func headlessGame(t *testing.T) *Game {
	t.Helper()
	cfg := config.Default()
	cfg.Grid.NX, cfg.Grid.NY = 20, 10
	cfg.Spray.BatchSize = 100
	cfg.Spray.Budget = 100000
	cfg.Spray.CoolingPerDrop = 1e-4
	cfg.Run.Workers = 1
	cfg.ComputeDerived()

	g, err := NewGameWithOptions(cfg, Options{Headless: true})
	if err != nil {
		t.Fatalf("NewGameWithOptions: %v", err)
	}
	t.Cleanup(g.Unload)
	return g
}

func TestHaltAtIterationLimit(t *testing.T) {
	g := headlessGame(t)
	for i := 0; i < 4; i++ {
		if g.UpdateHeadless() != sim.StatusRunning {
			t.Fatalf("stopped early at iteration %d", g.Iteration())
		}
	}

	g.Halt()
	if !g.Stopped() || !g.reported {
		t.Fatal("Halt should stop the run and report it")
	}
	res := g.Result()
	if res.Reason != sim.ReasonIterationLimit || res.Iterations != 4 {
		t.Errorf("result = %v after %d iterations, want iteration_limit after 4", res.Reason, res.Iterations)
	}

	g.Halt()
	if g.UpdateHeadless() != sim.StatusStopped || g.Iteration() != 4 {
		t.Error("stepping after Halt should do nothing")
	}
}

func TestSpeedClamped(t *testing.T) {
	cfg := config.Default()
	cfg.Run.Workers = 1
	g, err := NewGameWithOptions(cfg, Options{Headless: true, IterationsPerFrame: 1000})
	if err != nil {
		t.Fatal(err)
	}
	defer g.Unload()
	if g.speed != maxSpeed {
		t.Errorf("speed = %d, want %d", g.speed, maxSpeed)
	}
	g.slower()
	if g.speed != maxSpeed/2 {
		t.Errorf("slower: speed = %d, want %d", g.speed, maxSpeed/2)
	}
}
