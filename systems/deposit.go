package systems

// DepositResult summarizes one deposition pass.
type DepositResult struct {
	Applied int     // droplets deposited (≤ batch length and budget)
	Removed float64 // cooling subtracted from in-bounds cells
	Spilled float64 // cooling discarded because the stencil left the grid
}

// Depositor scatters droplet cooling into a grid through an impact kernel.
// It owns scratch index buffers and is not safe for concurrent use.
type Depositor struct {
	pool      *WorkerPool
	threshold int // min grid cells before the scatter fans out

	ci, cj []int
}

// NewDepositor creates a depositor. A nil pool keeps the scatter on the
// calling goroutine.
func NewDepositor(pool *WorkerPool, parallelThreshold int) *Depositor {
	return &Depositor{pool: pool, threshold: parallelThreshold}
}

// Deposit applies droplets from batch in order until the batch is exhausted
// or budgetRemaining droplets have been applied. Each droplet subtracts
// cooling*weight from the in-bounds cells of the 3x3 stencil around its
// impact cell; off-grid offsets are skipped, not redistributed.
//
// The scatter is banded by grid row: every band walks the whole droplet
// prefix in order, so each cell sees its contributions in the same order as
// a scalar loop and results do not depend on worker count.
func (d *Depositor) Deposit(g *Grid, b *Batch, k Kernel, cooling float64, budgetRemaining int) DepositResult {
	n := b.Len()
	if budgetRemaining < n {
		n = budgetRemaining
	}
	if n <= 0 {
		return DepositResult{}
	}

	var contrib [3][3]float64
	var total float64
	for a := range contrib {
		for c := range contrib[a] {
			contrib[a][c] = cooling * k.w[a][c]
			total += contrib[a][c]
		}
	}

	if cap(d.ci) < n {
		d.ci = make([]int, n)
		d.cj = make([]int, n)
	}
	ci, cj := d.ci[:n], d.cj[:n]

	res := DepositResult{Applied: n}
	for m := 0; m < n; m++ {
		i, j := g.CellIndex(b.X[m], b.Y[m])
		ci[m], cj[m] = i, j

		if i > 0 && i < g.NX-1 && j > 0 && j < g.NY-1 {
			res.Removed += total
			continue
		}
		for di := -1; di <= 1; di++ {
			for dj := -1; dj <= 1; dj++ {
				if g.InBounds(i+di, j+dj) {
					res.Removed += contrib[di+1][dj+1]
				} else {
					res.Spilled += contrib[di+1][dj+1]
				}
			}
		}
	}

	data := g.data()
	ny := g.NY
	scatter := func(start, end int) {
		for m := range ci {
			i0 := ci[m]
			if i0+1 < start || i0-1 >= end {
				continue
			}
			j0 := cj[m]
			for di := -1; di <= 1; di++ {
				i := i0 + di
				if i < start || i >= end {
					continue
				}
				row := data[i*ny : (i+1)*ny]
				w := &contrib[di+1]
				for dj := -1; dj <= 1; dj++ {
					j := j0 + dj
					if j < 0 || j >= ny {
						continue
					}
					row[j] -= w[dj+1]
				}
			}
		}
	}

	if d.pool == nil || g.NX*g.NY < d.threshold {
		scatter(0, g.NX)
	} else {
		d.pool.Run(g.NX, scatter)
	}
	return res
}
