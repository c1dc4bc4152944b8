package systems

// Diffuser advances a grid by explicit 5-point finite-difference diffusion.
type Diffuser struct {
	pool      *WorkerPool
	threshold int
}

// NewDiffuser creates a diffuser. A nil pool keeps every step on the calling
// goroutine.
func NewDiffuser(pool *WorkerPool, parallelThreshold int) *Diffuser {
	return &Diffuser{pool: pool, threshold: parallelThreshold}
}

// Diffuse runs steps explicit updates with Fourier numbers foX and foY.
// Interior cells read only the pre-step field; border cells are copied
// through unchanged. Stability needs foX+foY <= 0.5 and is not checked.
func (d *Diffuser) Diffuse(g *Grid, foX, foY float64, steps int) {
	nx, ny := g.NX, g.NY
	for s := 0; s < steps; s++ {
		src := g.cur.RawMatrix().Data
		dst := g.back.RawMatrix().Data

		step := func(start, end int) {
			for i := start; i < end; i++ {
				row := src[i*ny : (i+1)*ny]
				out := dst[i*ny : (i+1)*ny]
				if i == 0 || i == nx-1 || ny < 3 {
					copy(out, row)
					continue
				}
				north := src[(i-1)*ny : i*ny]
				south := src[(i+1)*ny : (i+2)*ny]

				out[0] = row[0]
				for j := 1; j < ny-1; j++ {
					c := row[j]
					out[j] = c +
						foX*(south[j]-2*c+north[j]) +
						foY*(row[j+1]-2*c+row[j-1])
				}
				out[ny-1] = row[ny-1]
			}
		}

		if d.pool == nil || nx*ny < d.threshold {
			step(0, nx)
		} else {
			d.pool.Run(nx, step)
		}
		g.swap()
	}
}
