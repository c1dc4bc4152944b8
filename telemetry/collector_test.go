package telemetry

import "testing"

func TestCollectorWindows(t *testing.T) {
	c := NewCollector(3, 0)
	field := []float64{1, -1, 2, 3}

	for it := 1; it <= 2; it++ {
		c.RecordDeposit(10, 1.0, 0.5)
		if c.ShouldFlush(it) {
			t.Fatalf("flushed early at iteration %d", it)
		}
	}
	c.RecordDeposit(10, 1.0, 0.5)
	if !c.ShouldFlush(3) {
		t.Fatal("expected flush at iteration 3")
	}

	s := c.Flush(3, 30, field)
	if s.Applied != 30 || s.Removed != 3 || s.Spilled != 1.5 {
		t.Errorf("window totals = %d/%g/%g, want 30/3/1.5", s.Applied, s.Removed, s.Spilled)
	}
	if s.Iteration != 3 || s.Droplets != 30 || s.WindowStart != 0 {
		t.Errorf("unexpected window bounds: %+v", s)
	}
	if s.IceCells != 1 {
		t.Errorf("ice cells = %d, want 1", s.IceCells)
	}

	if c.ShouldFlush(4) {
		t.Error("window should restart after flush")
	}
	s = c.Flush(4, 31, field)
	if s.Applied != 0 || s.WindowStart != 3 {
		t.Errorf("counters not reset: %+v", s)
	}
}

func TestCollectorMinimumInterval(t *testing.T) {
	c := NewCollector(0, 0)
	if !c.ShouldFlush(1) {
		t.Error("interval 1 should flush every iteration")
	}
}
