package softgpu

import (
	"fmt"
	"sync"
)

// Window is a desktop window that only exists in memory.
type Window struct {
	mu      sync.RWMutex
	x, y    int
	width   int
	height  int
	visible bool
}

// NewWindow returns a hidden window with the given bounds.
func NewWindow(x, y, width, height int) *Window {
	return &Window{x: x, y: y, width: width, height: height}
}

// Size implements ports.Window.
func (w *Window) Size() (int, int, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.width, w.height, nil
}

// Visible implements ports.Window.
func (w *Window) Visible() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.visible
}

// Show implements ports.Window.
func (w *Window) Show() {
	w.mu.Lock()
	w.visible = true
	w.mu.Unlock()
}

// Resize changes the client area size.
func (w *Window) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("softgpu: invalid window size %dx%d", width, height)
	}
	w.mu.Lock()
	w.width, w.height = width, height
	w.mu.Unlock()
	return nil
}

// Bounds returns the window position and size.
func (w *Window) Bounds() (x, y, width, height int) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.x, w.y, w.width, w.height
}
