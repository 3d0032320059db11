package ports

import "time"

// TextureHandle identifies a texture shared across processes.
type TextureHandle uint64

// TextureDesc describes a shared texture.
type TextureDesc struct {
	Width  int
	Height int
	// SRGB reports whether pixel values are sRGB encoded.
	SRGB bool
}

// SharedTexture is a texture opened from a TextureHandle.
type SharedTexture interface {
	Desc() TextureDesc

	// Pixels returns the RGBA8 contents. Only valid while the keyed mutex
	// is held.
	Pixels() []byte

	// AcquireSync waits up to timeout for the keyed mutex to become free
	// with the given key.
	AcquireSync(key uint64, timeout time.Duration) error

	// ReleaseSync releases the keyed mutex, handing it over under key.
	ReleaseSync(key uint64) error
}

// TextureOpener opens textures shared by another process.
type TextureOpener interface {
	OpenSharedTexture(handle TextureHandle) (SharedTexture, error)
}

// Surface is the output swap chain the pacer composites into.
type Surface interface {
	// Resize reallocates the output buffers.
	Resize(width, height int) error

	// Composite draws src across the full output.
	Composite(src SharedTexture) error

	// Present flips the output to the display, optionally waiting for vsync.
	Present(vsync bool) error
}

// Window is the desktop window hosting the output surface.
type Window interface {
	Size() (width, height int, err error)
	Visible() bool
	Show()

	// Resize changes the client area. The surface follows on the next
	// submitted frame.
	Resize(width, height int) error
}
