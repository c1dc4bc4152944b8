package systems

import (
	"math"
	"math/rand"
	"testing"
)

func randomGrid(nx, ny int, seed int64) *Grid {
	g := NewGrid(nx, ny, 1, 1, 0)
	rng := rand.New(rand.NewSource(seed))
	for i := range g.Values() {
		g.Values()[i] = rng.Float64()*10 - 5
	}
	return g
}

func TestDiffuseUniformFixedPoint(t *testing.T) {
	g := NewGrid(16, 12, 1, 1, 3.25)
	NewDiffuser(nil, 0).Diffuse(g, 0.2, 0.25, 25)

	for idx, v := range g.Values() {
		if v != 3.25 {
			t.Fatalf("cell %d = %v, want 3.25", idx, v)
		}
	}
}

func TestDiffuseSinglePeak(t *testing.T) {
	const foX, foY = 0.1, 0.05
	g := NewGrid(9, 9, 1, 1, 0)
	g.Set(4, 4, 1)

	NewDiffuser(nil, 0).Diffuse(g, foX, foY, 1)

	if math.Abs(g.At(3, 4)-foX) > tol || math.Abs(g.At(5, 4)-foX) > tol {
		t.Errorf("x neighbours = %g, %g, want %g", g.At(3, 4), g.At(5, 4), foX)
	}
	if math.Abs(g.At(4, 3)-foY) > tol || math.Abs(g.At(4, 5)-foY) > tol {
		t.Errorf("y neighbours = %g, %g, want %g", g.At(4, 3), g.At(4, 5), foY)
	}
	wantPeak := 1 - 2*foX - 2*foY
	if math.Abs(g.At(4, 4)-wantPeak) > tol {
		t.Errorf("peak = %g, want %g", g.At(4, 4), wantPeak)
	}
	for _, d := range [][2]int{{3, 3}, {3, 5}, {5, 3}, {5, 5}} {
		if g.At(d[0], d[1]) != 0 {
			t.Errorf("diagonal (%d,%d) = %g, want 0 after one step", d[0], d[1], g.At(d[0], d[1]))
		}
	}

	// Peak excess over the 3x3 neighbourhood average strictly decreases.
	var sum float64
	for i := 3; i <= 5; i++ {
		for j := 3; j <= 5; j++ {
			sum += g.At(i, j)
		}
	}
	before := 1 - 1.0/9
	after := g.At(4, 4) - sum/9
	if !(after < before) {
		t.Errorf("peak excess %g did not drop below %g", after, before)
	}
}

func TestDiffuseBordersInvariant(t *testing.T) {
	g := randomGrid(20, 14, 11)
	orig := append([]float64(nil), g.Values()...)

	NewDiffuser(nil, 0).Diffuse(g, 0.2, 0.2, 50)

	nx, ny := g.Dims()
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			if i != 0 && i != nx-1 && j != 0 && j != ny-1 {
				continue
			}
			if g.At(i, j) != orig[i*ny+j] {
				t.Fatalf("border (%d,%d) changed: %g -> %g", i, j, orig[i*ny+j], g.At(i, j))
			}
		}
	}
}

func TestDiffuseReadsSnapshot(t *testing.T) {
	// With an in-place update the second row would see the already-updated
	// first interior row; the synchronous result is symmetric instead.
	g := NewGrid(5, 3, 1, 1, 0)
	g.Set(1, 1, 1)
	g.Set(3, 1, 1)

	NewDiffuser(nil, 0).Diffuse(g, 0.25, 0, 1)

	if g.At(1, 1) != g.At(3, 1) {
		t.Errorf("asymmetric update: (1,1)=%g (3,1)=%g", g.At(1, 1), g.At(3, 1))
	}
	if math.Abs(g.At(2, 1)-0.5) > tol {
		t.Errorf("middle = %g, want 0.5", g.At(2, 1))
	}
}

func TestDiffuseZeroStepsNoop(t *testing.T) {
	g := randomGrid(8, 8, 2)
	orig := append([]float64(nil), g.Values()...)
	NewDiffuser(nil, 0).Diffuse(g, 0.2, 0.2, 0)
	for idx, v := range g.Values() {
		if v != orig[idx] {
			t.Fatal("zero diffusion steps changed the field")
		}
	}
}

func TestDiffuseDegenerateGrids(t *testing.T) {
	for _, dims := range [][2]int{{1, 1}, {1, 7}, {7, 1}, {2, 2}, {2, 9}} {
		g := randomGrid(dims[0], dims[1], 4)
		orig := append([]float64(nil), g.Values()...)
		NewDiffuser(nil, 0).Diffuse(g, 0.2, 0.2, 3)
		for idx, v := range g.Values() {
			if v != orig[idx] {
				t.Fatalf("%dx%d grid has no interior but cell %d changed", dims[0], dims[1], idx)
			}
		}
	}
}

func TestDiffuseMatchesForAnyWorkerCount(t *testing.T) {
	want := randomGrid(41, 29, 8)
	NewDiffuser(nil, 0).Diffuse(want, 0.21, 0.17, 7)

	for _, workers := range []int{2, 5, 16} {
		pool := NewWorkerPool(workers)
		g := randomGrid(41, 29, 8)
		NewDiffuser(pool, 0).Diffuse(g, 0.21, 0.17, 7)
		pool.Close()

		for idx, v := range g.Values() {
			if v != want.Values()[idx] {
				t.Fatalf("workers=%d cell %d = %v, sequential %v", workers, idx, v, want.Values()[idx])
			}
		}
	}
}

func TestDiffuseUnstableRunsAndGrows(t *testing.T) {
	g := NewGrid(12, 12, 1, 1, 0)
	for i := 0; i < 12; i++ {
		for j := 0; j < 12; j++ {
			if (i+j)%2 == 0 {
				g.Set(i, j, 1)
			} else {
				g.Set(i, j, -1)
			}
		}
	}

	NewDiffuser(nil, 0).Diffuse(g, 0.5, 0.5, 5)

	var maxAbs float64
	for _, v := range g.Values() {
		maxAbs = math.Max(maxAbs, math.Abs(v))
	}
	if maxAbs <= 1 {
		t.Errorf("expected divergence with FoX+FoY=1, max |T| = %g", maxAbs)
	}
}
