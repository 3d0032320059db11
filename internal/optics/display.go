package optics

import "github.com/bft-labs/camsim/internal/domain"

// RawProjection is the tangent-space frustum of one eye.
type RawProjection struct {
	Left, Right, Top, Bottom float32
}

// Display is the fixed geometry of the virtual stereo display.
type Display struct {
	RenderWidth  int
	RenderHeight int
}

// EyeViewport returns the output rectangle of eye; the right eye sits to
// the right of the left.
func (d Display) EyeViewport(eye domain.Eye) domain.Viewport {
	vp := domain.Viewport{Width: d.RenderWidth, Height: d.RenderHeight}
	if eye == domain.EyeRight {
		vp.X = d.RenderWidth
	}
	return vp
}

// WindowBounds returns the desktop rectangle holding both eyes.
func (d Display) WindowBounds() domain.Viewport {
	return domain.Viewport{Width: 2 * d.RenderWidth, Height: d.RenderHeight}
}

// ProjectionRaw is a symmetric 90 degree frustum for both eyes.
func (Display) ProjectionRaw(domain.Eye) RawProjection {
	return RawProjection{Left: -1, Right: 1, Top: -1, Bottom: 1}
}

// DistortionCoordinates holds the per-channel UVs of a distortion lookup.
type DistortionCoordinates struct {
	Red, Green, Blue [2]float32
}

// ComputeDistortion is the identity: the display has no lens.
func (Display) ComputeDistortion(_ domain.Eye, u, v float32) DistortionCoordinates {
	uv := [2]float32{u, v}
	return DistortionCoordinates{Red: uv, Green: uv, Blue: uv}
}
