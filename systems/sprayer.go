package systems

import "math/rand"

// Batch holds one iteration's droplet impact coordinates as parallel slices.
// Storage is reused across iterations; contents are valid until the next Spray.
type Batch struct {
	X []float64
	Y []float64
}

// Len returns the number of droplets in the batch.
func (b *Batch) Len() int { return len(b.X) }

// DropletSource produces impact batches. Spray must return n fresh droplets,
// reusing dst's storage when possible.
type DropletSource interface {
	Spray(n int, dst *Batch) *Batch
}

// Sprayer draws uniformly distributed impact points over the plate.
type Sprayer struct {
	lx, ly float64
	rng    *rand.Rand
}

// NewSprayer creates a sprayer over [0, lx) x [0, ly) using rng.
// The same seed yields the same droplet sequence.
func NewSprayer(lx, ly float64, rng *rand.Rand) *Sprayer {
	return &Sprayer{lx: lx, ly: ly, rng: rng}
}

// Spray fills dst with n fresh impact points and returns it. A nil dst
// allocates a new batch. All x draws are taken before all y draws.
func (s *Sprayer) Spray(n int, dst *Batch) *Batch {
	if dst == nil {
		dst = &Batch{}
	}
	if cap(dst.X) < n {
		dst.X = make([]float64, n)
		dst.Y = make([]float64, n)
	}
	dst.X = dst.X[:n]
	dst.Y = dst.Y[:n]

	for i := range dst.X {
		dst.X[i] = s.rng.Float64() * s.lx
	}
	for i := range dst.Y {
		dst.Y[i] = s.rng.Float64() * s.ly
	}
	return dst
}
