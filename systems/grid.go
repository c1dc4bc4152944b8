package systems

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Grid is the plate temperature field. Row index i runs along x (NX rows),
// column index j along y (NY columns). Dimensions and spacing never change
// after construction.
type Grid struct {
	NX, NY int
	LX, LY float64
	DX, DY float64

	// cur holds the live field; back is the diffusion write target.
	cur, back *mat.Dense
}

// NewGrid creates a grid with every cell set to initial.
func NewGrid(nx, ny int, lx, ly, initial float64) *Grid {
	g := &Grid{
		NX: nx, NY: ny,
		LX: lx, LY: ly,
		DX: lx / float64(nx),
		DY: ly / float64(ny),

		cur:  mat.NewDense(nx, ny, nil),
		back: mat.NewDense(nx, ny, nil),
	}
	data := g.data()
	for i := range data {
		data[i] = initial
	}
	return g
}

// data returns the row-major backing slice of the live field.
// mat.NewDense always allocates with stride == NY.
func (g *Grid) data() []float64 {
	return g.cur.RawMatrix().Data
}

// swap exchanges the live field and the back buffer.
func (g *Grid) swap() {
	g.cur, g.back = g.back, g.cur
}

// CellIndex maps a physical coordinate to the cell containing it.
// Each axis is clamped independently to [0, N-1], so coordinates on or past
// the upper edge land in the last cell.
func (g *Grid) CellIndex(x, y float64) (i, j int) {
	return clampIndex(math.Floor(x/g.LX*float64(g.NX)), g.NX),
		clampIndex(math.Floor(y/g.LY*float64(g.NY)), g.NY)
}

func clampIndex(f float64, n int) int {
	// Compare as float first so huge or NaN inputs never overflow int.
	if !(f >= 0) {
		return 0
	}
	if f >= float64(n-1) {
		return n - 1
	}
	return int(f)
}

// InBounds reports whether (i, j) addresses a cell.
func (g *Grid) InBounds(i, j int) bool {
	return i >= 0 && i < g.NX && j >= 0 && j < g.NY
}

// At returns the temperature of cell (i, j).
func (g *Grid) At(i, j int) float64 {
	return g.data()[i*g.NY+j]
}

// Set overwrites the temperature of cell (i, j).
func (g *Grid) Set(i, j int, v float64) {
	g.data()[i*g.NY+j] = v
}

// Dims returns the grid resolution.
func (g *Grid) Dims() (nx, ny int) { return g.NX, g.NY }

// Extent returns the physical plate size.
func (g *Grid) Extent() (lx, ly float64) { return g.LX, g.LY }

// Spacing returns the cell size along each axis.
func (g *Grid) Spacing() (dx, dy float64) { return g.DX, g.DY }

// Values returns the live row-major field. Callers must not retain it across
// a diffusion step.
func (g *Grid) Values() []float64 {
	return g.data()
}

// Field returns a copy of the current temperatures as an NX x NY matrix.
func (g *Grid) Field() *mat.Dense {
	return mat.DenseCopyOf(g.cur)
}

// Min returns the coldest temperature in the field.
func (g *Grid) Min() float64 {
	return mat.Min(g.cur)
}

// AnyBelow reports whether any cell is strictly below threshold.
func (g *Grid) AnyBelow(threshold float64) bool {
	for _, v := range g.data() {
		if v < threshold {
			return true
		}
	}
	return false
}

// IceMask marks cells whose temperature is below the freezing point.
type IceMask struct {
	NX, NY int
	Cells  []bool // row-major, same layout as the grid
}

// Mask derives the ice mask for the given freezing point.
func (g *Grid) Mask(freezing float64) IceMask {
	data := g.data()
	m := IceMask{NX: g.NX, NY: g.NY, Cells: make([]bool, len(data))}
	for k, v := range data {
		m.Cells[k] = v < freezing
	}
	return m
}

// At reports whether cell (i, j) is ice.
func (m IceMask) At(i, j int) bool {
	return m.Cells[i*m.NY+j]
}

// Count returns the number of ice cells.
func (m IceMask) Count() int {
	n := 0
	for _, ice := range m.Cells {
		if ice {
			n++
		}
	}
	return n
}

// Any reports whether at least one cell is ice.
func (m IceMask) Any() bool {
	for _, ice := range m.Cells {
		if ice {
			return true
		}
	}
	return false
}
