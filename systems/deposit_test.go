package systems

import (
	"math"
	"math/rand"
	"testing"
)

const tol = 1e-12

// referenceDeposit is the scalar per-droplet loop the banded scatter must match.
func referenceDeposit(g *Grid, b *Batch, k Kernel, cooling float64, budget int) int {
	applied := 0
	for m := 0; m < b.Len() && applied < budget; m++ {
		i, j := g.CellIndex(b.X[m], b.Y[m])
		for di := -1; di <= 1; di++ {
			for dj := -1; dj <= 1; dj++ {
				if g.InBounds(i+di, j+dj) {
					g.Set(i+di, j+dj, g.At(i+di, j+dj)-cooling*k.Weight(di, dj))
				}
			}
		}
		applied++
	}
	return applied
}

func fieldSum(g *Grid) float64 {
	var s float64
	for _, v := range g.Values() {
		s += v
	}
	return s
}

func TestDepositSingleInterior(t *testing.T) {
	g := NewGrid(10, 10, 1, 1, 5.0)
	k := BinomialKernel()
	d := NewDepositor(nil, 0)

	b := &Batch{X: []float64{0.55}, Y: []float64{0.55}} // cell (5,5)
	res := d.Deposit(g, b, k, 2.0, 10)

	if res.Applied != 1 {
		t.Fatalf("applied = %d, want 1", res.Applied)
	}
	if math.Abs(res.Removed-2.0) > tol || res.Spilled != 0 {
		t.Errorf("removed=%g spilled=%g, want 2 and 0", res.Removed, res.Spilled)
	}

	for i := 0; i < 10; i++ {
		for j := 0; j < 10; j++ {
			di, dj := i-5, j-5
			want := 5.0
			if di >= -1 && di <= 1 && dj >= -1 && dj <= 1 {
				want -= 2.0 * k.Weight(di, dj)
			}
			if math.Abs(g.At(i, j)-want) > tol {
				t.Errorf("cell (%d,%d) = %g, want %g", i, j, g.At(i, j), want)
			}
		}
	}
}

func TestDepositCoincidentScales(t *testing.T) {
	const n = 50
	g := NewGrid(10, 10, 1, 1, 5.0)
	k := BinomialKernel()
	d := NewDepositor(nil, 0)

	b := &Batch{X: make([]float64, n), Y: make([]float64, n)}
	for m := range b.X {
		b.X[m], b.Y[m] = 0.35, 0.62 // cell (3,6)
	}
	d.Deposit(g, b, k, 0.1, n)

	for di := -1; di <= 1; di++ {
		for dj := -1; dj <= 1; dj++ {
			want := 5.0 - n*0.1*k.Weight(di, dj)
			got := g.At(3+di, 6+dj)
			if math.Abs(got-want) > 1e-9 {
				t.Errorf("offset (%d,%d) = %g, want %g", di, dj, got, want)
			}
		}
	}
}

func TestDepositCornerSpillsOffGrid(t *testing.T) {
	k := BinomialKernel()
	d := NewDepositor(nil, 0)

	corner := NewGrid(8, 8, 1, 1, 0)
	before := fieldSum(corner)
	res := d.Deposit(corner, &Batch{X: []float64{0}, Y: []float64{0}}, k, 1.0, 1)
	cornerRemoved := before - fieldSum(corner)

	interior := NewGrid(8, 8, 1, 1, 0)
	d.Deposit(interior, &Batch{X: []float64{0.5}, Y: []float64{0.5}}, k, 1.0, 1)
	interiorRemoved := -fieldSum(interior)

	// Only (0,0), (1,0), (0,1), (1,1) are in bounds: 0.25 + 2*0.125 + 0.0625.
	if math.Abs(cornerRemoved-0.5625) > tol {
		t.Errorf("corner removed %g, want 0.5625", cornerRemoved)
	}
	if math.Abs(res.Removed-0.5625) > tol || math.Abs(res.Spilled-0.4375) > tol {
		t.Errorf("result removed=%g spilled=%g, want 0.5625/0.4375", res.Removed, res.Spilled)
	}
	if !(cornerRemoved < interiorRemoved) {
		t.Errorf("corner removal %g should be less than interior %g", cornerRemoved, interiorRemoved)
	}

	// Cells outside the clipped neighbourhood are untouched.
	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			if (i > 1 || j > 1) && corner.At(i, j) != 0 {
				t.Errorf("cell (%d,%d) = %g, want 0", i, j, corner.At(i, j))
			}
		}
	}
}

func TestDepositUpperEdgeClamps(t *testing.T) {
	g := NewGrid(4, 4, 1, 1, 0)
	k := BinomialKernel()
	d := NewDepositor(nil, 0)

	d.Deposit(g, &Batch{X: []float64{1.0}, Y: []float64{1.0}}, k, 1.0, 1)
	if math.Abs(g.At(3, 3)+0.25) > tol {
		t.Errorf("edge cell = %g, want -0.25 (center weight)", g.At(3, 3))
	}
	if math.Abs(g.At(2, 2)+0.0625) > tol {
		t.Errorf("diagonal neighbour = %g, want -0.0625", g.At(2, 2))
	}
}

func TestDepositStopsAtBudget(t *testing.T) {
	k := BinomialKernel()
	d := NewDepositor(nil, 0)
	b := &Batch{
		X: []float64{0.15, 0.45, 0.75, 0.15, 0.45},
		Y: []float64{0.15, 0.45, 0.75, 0.75, 0.15},
	}

	g := NewGrid(10, 10, 1, 1, 5)
	res := d.Deposit(g, b, k, 1.0, 3)
	if res.Applied != 3 {
		t.Fatalf("applied = %d, want 3", res.Applied)
	}

	want := NewGrid(10, 10, 1, 1, 5)
	referenceDeposit(want, &Batch{X: b.X[:3], Y: b.Y[:3]}, k, 1.0, 3)
	for idx, v := range g.Values() {
		if v != want.Values()[idx] {
			t.Fatalf("cell %d = %g, want %g", idx, v, want.Values()[idx])
		}
	}

	untouched := NewGrid(10, 10, 1, 1, 5)
	if res := d.Deposit(untouched, b, k, 1.0, 0); res.Applied != 0 {
		t.Errorf("zero budget applied %d droplets", res.Applied)
	}
	for _, v := range untouched.Values() {
		if v != 5 {
			t.Fatal("zero budget modified the field")
		}
	}
}

func TestDepositMatchesScalarForAnyWorkerCount(t *testing.T) {
	k, err := NewKernel([3][3]float64{{0.3, 1, 2}, {0.5, 4, 1.5}, {0, 2, 0.7}})
	if err != nil {
		t.Fatal(err)
	}
	rng := rand.New(rand.NewSource(99))
	b := NewSprayer(1.0, 0.5, rng).Spray(20000, nil)

	want := NewGrid(37, 23, 1.0, 0.5, 5)
	referenceDeposit(want, b, k, 0.3, 15000)

	for _, workers := range []int{1, 2, 3, 8, 64} {
		pool := NewWorkerPool(workers)
		g := NewGrid(37, 23, 1.0, 0.5, 5)
		res := NewDepositor(pool, 0).Deposit(g, b, k, 0.3, 15000)
		pool.Close()

		if res.Applied != 15000 {
			t.Fatalf("workers=%d applied %d, want 15000", workers, res.Applied)
		}
		for idx, v := range g.Values() {
			if v != want.Values()[idx] {
				t.Fatalf("workers=%d cell %d = %v, scalar %v", workers, idx, v, want.Values()[idx])
			}
		}
	}
}

func TestDepositAccountingBalances(t *testing.T) {
	g := NewGrid(12, 6, 1, 1, 0)
	b := NewSprayer(1, 1, rand.New(rand.NewSource(5))).Spray(3000, nil)
	res := NewDepositor(nil, 0).Deposit(g, b, BinomialKernel(), 0.2, 3000)

	if math.Abs(-fieldSum(g)-res.Removed) > 1e-9 {
		t.Errorf("field lost %g, result says %g", -fieldSum(g), res.Removed)
	}
	if math.Abs(res.Removed+res.Spilled-0.2*3000) > 1e-9 {
		t.Errorf("removed+spilled = %g, want %g", res.Removed+res.Spilled, 0.2*3000)
	}
	if res.Spilled <= 0 {
		t.Error("expected some spillover on a small grid")
	}
}
