package systems

import (
	"errors"
	"fmt"
)

// Kernel is a normalized 3x3 impact weight table. Weight(di, dj) is the
// fraction of one droplet's cooling that lands on the cell offset by
// (di, dj) from the impact cell, with di, dj in {-1, 0, 1}.
type Kernel struct {
	w [3][3]float64
}

// NewKernel normalizes w by its sum. Weights must be non-negative with a
// positive total. No symmetry is assumed.
func NewKernel(w [3][3]float64) (Kernel, error) {
	var sum float64
	for a := range w {
		for b := range w[a] {
			if w[a][b] < 0 {
				return Kernel{}, fmt.Errorf("kernel weight [%d][%d] is negative: %g", a, b, w[a][b])
			}
			sum += w[a][b]
		}
	}
	if !(sum > 0) {
		return Kernel{}, errors.New("kernel weights must have a positive sum")
	}

	var k Kernel
	for a := range w {
		for b := range w[a] {
			k.w[a][b] = w[a][b] / sum
		}
	}
	return k, nil
}

// BinomialKernel returns the [1 2 1; 2 4 2; 1 2 1]/16 impact kernel.
func BinomialKernel() Kernel {
	k, _ := NewKernel([3][3]float64{
		{1, 2, 1},
		{2, 4, 2},
		{1, 2, 1},
	})
	return k
}

// Weight returns the weight at offset (di, dj).
func (k Kernel) Weight(di, dj int) float64 {
	return k.w[di+1][dj+1]
}

// Sum returns the total of all nine weights (1 up to rounding).
func (k Kernel) Sum() float64 {
	var s float64
	for a := range k.w {
		for b := range k.w[a] {
			s += k.w[a][b]
		}
	}
	return s
}
