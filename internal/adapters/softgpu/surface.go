package softgpu

import (
	"fmt"
	"math"
	"sync"

	"github.com/bft-labs/camsim/internal/ports"
)

// ClearColor is the output clear colour before compositing.
var ClearColor = [4]float64{0.5, 0, 0, 1}

// srgbToLinear maps an 8-bit sRGB value to an 8-bit linear value.
var srgbToLinear = func() (lut [256]byte) {
	for i := range lut {
		c := float64(i) / 255
		var l float64
		if c <= 0.04045 {
			l = c / 12.92
		} else {
			l = math.Pow((c+0.055)/1.055, 2.4)
		}
		lut[i] = byte(math.Round(l * 255))
	}
	return lut
}()

// Surface is an RGBA8 swap chain with a single back buffer.
type Surface struct {
	mu       sync.Mutex
	width    int
	height   int
	back     []byte
	front    []byte
	resizes  int
	presents int
	vsyncs   int
}

// NewSurface returns an unsized surface. Resize must be called before
// compositing.
func NewSurface() *Surface {
	return &Surface{}
}

// Resize implements ports.Surface.
func (s *Surface) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("softgpu: invalid surface size %dx%d", width, height)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = width, height
	s.back = make([]byte, width*height*4)
	s.front = make([]byte, width*height*4)
	s.resizes++
	return nil
}

// Composite implements ports.Surface. The back buffer is cleared, then src
// is drawn across it with nearest sampling. sRGB sources are linearised.
func (s *Surface) Composite(src ports.SharedTexture) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.back == nil {
		return fmt.Errorf("softgpu: surface not sized")
	}

	bg := [4]byte{}
	for i, c := range ClearColor {
		bg[i] = byte(math.Round(c * 255))
	}
	for i := 0; i < len(s.back); i += 4 {
		copy(s.back[i:i+4], bg[:])
	}

	desc := src.Desc()
	pix := src.Pixels()
	if desc.Width <= 0 || desc.Height <= 0 || len(pix) < desc.Width*desc.Height*4 {
		return nil
	}
	for y := 0; y < s.height; y++ {
		sy := y * desc.Height / s.height
		for x := 0; x < s.width; x++ {
			sx := x * desc.Width / s.width
			in := pix[(sy*desc.Width+sx)*4:]
			out := s.back[(y*s.width+x)*4:]
			if desc.SRGB {
				out[0] = srgbToLinear[in[0]]
				out[1] = srgbToLinear[in[1]]
				out[2] = srgbToLinear[in[2]]
			} else {
				out[0], out[1], out[2] = in[0], in[1], in[2]
			}
			out[3] = in[3]
		}
	}
	return nil
}

// Present implements ports.Surface by swapping the buffers.
func (s *Surface) Present(vsync bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.back == nil {
		return fmt.Errorf("softgpu: surface not sized")
	}
	s.back, s.front = s.front, s.back
	s.presents++
	if vsync {
		s.vsyncs++
	}
	return nil
}

// Frame returns a copy of the last presented image.
func (s *Surface) Frame() (width, height int, pix []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height, append([]byte(nil), s.front...)
}

// SurfaceStats holds surface counters.
type SurfaceStats struct {
	Resizes  int
	Presents int
	VSyncs   int
}

// Stats returns the surface counters.
func (s *Surface) Stats() SurfaceStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SurfaceStats{Resizes: s.resizes, Presents: s.presents, VSyncs: s.vsyncs}
}
