// Package palette maps plate temperatures to display colours.
package palette

import (
	"image/color"
	"math"

	"github.com/crazy3lf/colorconv"
)

// Size is the number of precomputed entries in the temperature table.
const Size = 256

const (
	coldHue = 240.0 // blue
	warmHue = 0.0   // red
)

var (
	// Ice is the colour of a frozen cell in the mask view.
	Ice = color.RGBA{R: 40, G: 90, B: 200, A: 255}
	// Dry is the colour of an unfrozen cell in the mask view.
	Dry = color.RGBA{R: 245, G: 248, B: 252, A: 255}
)

// Palette is a cold-to-warm lookup table over a normalised temperature.
type Palette struct {
	table [Size]color.RGBA
}

// New builds a diverging table: saturated blue at the cold end, white in the
// middle, saturated red at the warm end.
func New() *Palette {
	p := &Palette{}
	for i := range p.table {
		f := float64(i) / (Size - 1)
		hue := coldHue
		if f > 0.5 {
			hue = warmHue
		}
		sat := math.Abs(2*f - 1)
		r, g, b, _ := colorconv.HSVToRGB(hue, sat, 1)
		p.table[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return p
}

// Color returns the colour of temperature t on the range [lo, hi].
// Values outside the range clamp to the end colours. An empty range maps to
// the midpoint and NaN maps to cold.
func (p *Palette) Color(t, lo, hi float64) color.RGBA {
	return p.table[index(t, lo, hi)]
}

// At returns the table entry i, clamped to the table.
func (p *Palette) At(i int) color.RGBA {
	if i < 0 {
		i = 0
	}
	if i >= Size {
		i = Size - 1
	}
	return p.table[i]
}

// Mask returns the mask-view colour for a cell.
func Mask(ice bool) color.RGBA {
	if ice {
		return Ice
	}
	return Dry
}

func index(t, lo, hi float64) int {
	if math.IsNaN(t) {
		return 0
	}
	if !(hi > lo) {
		return Size / 2
	}
	f := (t - lo) / (hi - lo)
	if f <= 0 {
		return 0
	}
	if f >= 1 {
		return Size - 1
	}
	return int(f * (Size - 1))
}
