package domain

// VSyncMode tells the display how a submitted frame relates to vsync.
type VSyncMode int

const (
	VSyncNone VSyncMode = iota
	VSyncWaitRender
	VSyncNoWaitRender
)

// Eye selects one half of the stereo output.
type Eye int

const (
	EyeLeft Eye = iota
	EyeRight
)

// String returns "left" or "right".
func (e Eye) String() string {
	if e == EyeRight {
		return "right"
	}
	return "left"
}

// PresentInfo is a frame handed to the virtual display by the compositor.
type PresentInfo struct {
	Texture            uint64
	VSync              VSyncMode
	FrameID            uint64
	VSyncTimeInSeconds float64
}

// Viewport is a pixel rectangle.
type Viewport struct {
	X, Y          int
	Width, Height int
}
