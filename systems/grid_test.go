package systems

import (
	"math"
	"testing"
)

func TestNewGridUniform(t *testing.T) {
	g := NewGrid(20, 10, 1.0, 0.5, 5.0)

	nx, ny := g.Dims()
	if nx != 20 || ny != 10 {
		t.Fatalf("expected 20x10, got %dx%d", nx, ny)
	}
	dx, dy := g.Spacing()
	if math.Abs(dx-0.05) > 1e-15 || math.Abs(dy-0.05) > 1e-15 {
		t.Errorf("expected spacing 0.05, got dx=%g dy=%g", dx, dy)
	}
	if lx, ly := g.Extent(); lx != 1.0 || ly != 0.5 {
		t.Errorf("extent = %gx%g, want 1x0.5", lx, ly)
	}
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			if g.At(i, j) != 5.0 {
				t.Fatalf("cell (%d,%d) = %g, want 5", i, j, g.At(i, j))
			}
		}
	}
}

func TestCellIndex(t *testing.T) {
	g := NewGrid(10, 5, 1.0, 0.5, 0)

	tests := []struct {
		name   string
		x, y   float64
		wi, wj int
	}{
		{"origin", 0, 0, 0, 0},
		{"interior", 0.35, 0.25, 3, 2},
		{"just below edge", 0.9999, 0.4999, 9, 4},
		{"upper edge clamps", 1.0, 0.5, 9, 4},
		{"beyond edge clamps", 3.0, 7.0, 9, 4},
		{"negative clamps", -0.2, -1, 0, 0},
		{"axes clamp independently", 1.5, 0.05, 9, 0},
		{"nan clamps to zero", math.NaN(), 0.25, 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i, j := g.CellIndex(tt.x, tt.y)
			if i != tt.wi || j != tt.wj {
				t.Errorf("CellIndex(%g, %g) = (%d, %d), want (%d, %d)", tt.x, tt.y, i, j, tt.wi, tt.wj)
			}
		})
	}
}

func TestFieldIsCopy(t *testing.T) {
	g := NewGrid(4, 4, 1, 1, 2.0)
	f := g.Field()
	f.Set(1, 1, -10)

	if g.At(1, 1) != 2.0 {
		t.Errorf("mutating Field() copy changed grid: %g", g.At(1, 1))
	}
	r, c := f.Dims()
	if r != 4 || c != 4 {
		t.Errorf("field dims %dx%d, want 4x4", r, c)
	}
}

func TestMaskAndMin(t *testing.T) {
	g := NewGrid(5, 5, 1, 1, 5.0)
	if g.AnyBelow(0) {
		t.Fatal("uniform warm grid should have no ice")
	}
	if g.Mask(0).Any() {
		t.Fatal("uniform warm grid mask should be empty")
	}

	g.Set(2, 3, -0.5)
	g.Set(4, 0, 0.0) // exactly at freezing is not ice

	if !g.AnyBelow(0) {
		t.Error("expected AnyBelow(0) after setting a negative cell")
	}
	m := g.Mask(0)
	if !m.At(2, 3) {
		t.Error("expected (2,3) to be ice")
	}
	if m.At(4, 0) {
		t.Error("cell at exactly 0 should not be ice")
	}
	if m.Count() != 1 {
		t.Errorf("ice count = %d, want 1", m.Count())
	}
	if g.Min() != -0.5 {
		t.Errorf("Min() = %g, want -0.5", g.Min())
	}
}
