package app

import "github.com/bft-labs/camsim/internal/domain"

// Grid spacing and colour of the synthetic test pattern.
const (
	gridSpacing = 64
	gridShade   = 160
)

// PixelAt returns the RGBA value of the synthetic test pattern at (x, y).
// The result depends only on the coordinates and the geometry.
func PixelAt(x, y int, g domain.Geometry) [4]byte {
	if y%gridSpacing == (g.Height/2)%gridSpacing || x%gridSpacing == (g.Width/4)%gridSpacing {
		return [4]byte{gridShade, gridShade, gridShade, 255}
	}

	var blue byte
	if x < g.Width/2 {
		blue = 127
	}
	return [4]byte{
		byte(((x * 256) / g.Width * 2) % 256),
		byte(((y * 256) / g.Height) % 256),
		blue,
		255,
	}
}

// RenderPattern fills dst with the synthetic test pattern for g. dst must
// hold at least g.FrameSize() bytes.
func RenderPattern(dst []byte, g domain.Geometry) {
	stride := g.Width * g.BytesPerPixel
	for y := 0; y < g.Height; y++ {
		row := dst[y*stride : (y+1)*stride]
		for x := 0; x < g.Width; x++ {
			px := PixelAt(x, y, g)
			copy(row[x*g.BytesPerPixel:], px[:g.BytesPerPixel])
		}
	}
}
