package telemetry

// Collector accumulates deposition totals between samples and produces
// IterationStats every N iterations.
type Collector struct {
	every     int
	freezing  float64
	lastFlush int

	// Counters for the current window
	applied int
	removed float64
	spilled float64

	scratch []float64
}

// NewCollector creates a collector that samples every `every` iterations
// (values below 1 sample every iteration).
func NewCollector(every int, freezing float64) *Collector {
	if every < 1 {
		every = 1
	}
	return &Collector{every: every, freezing: freezing}
}

// RecordDeposit adds one deposition pass to the current window.
func (c *Collector) RecordDeposit(applied int, removed, spilled float64) {
	c.applied += applied
	c.removed += removed
	c.spilled += spilled
}

// ShouldFlush reports whether iteration closes a sampling window.
func (c *Collector) ShouldFlush(iteration int) bool {
	return iteration-c.lastFlush >= c.every
}

// Flush samples the field and resets window counters.
func (c *Collector) Flush(iteration, droplets int, field []float64) IterationStats {
	var fs FieldStats
	fs, c.scratch = ComputeFieldStats(field, c.freezing, c.scratch)

	stats := IterationStats{
		WindowStart: c.lastFlush,
		Iteration:   iteration,
		Droplets:    droplets,
		Applied:     c.applied,
		Removed:     c.removed,
		Spilled:     c.spilled,
		FieldStats:  fs,
	}

	c.lastFlush = iteration
	c.applied = 0
	c.removed = 0
	c.spilled = 0

	return stats
}
