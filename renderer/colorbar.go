package renderer

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/icing/palette"
)

// DrawColorbar draws a vertical temperature scale with the warm end on top.
func DrawColorbar(x, y, width, height int32, p *palette.Palette, lo, hi float64, label string) {
	if height <= 0 {
		return
	}
	for k := int32(0); k < height; k++ {
		idx := int((height - 1 - k) * (palette.Size - 1) / max(height-1, 1))
		rl.DrawRectangle(x, y+k, width, 1, p.At(idx))
	}
	rl.DrawRectangleLines(x, y, width, height, rl.Color{R: 60, G: 70, B: 80, A: 255})

	rl.DrawText(fmt.Sprintf("%.3g", hi), x+width+6, y, 12, rl.LightGray)
	rl.DrawText(fmt.Sprintf("%.3g", lo), x+width+6, y+height-12, 12, rl.LightGray)
	if label != "" {
		rl.DrawText(label, x, y-18, 14, rl.LightGray)
	}
}

// DrawMaskLegend draws the two-swatch legend for the ice mask view.
func DrawMaskLegend(x, y int32) {
	rl.DrawRectangle(x, y, 14, 14, palette.Ice)
	rl.DrawText("ice", x+20, y, 14, rl.LightGray)
	rl.DrawRectangle(x, y+20, 14, 14, palette.Dry)
	rl.DrawText("dry", x+20, y+20, 14, rl.LightGray)
}
