package softgpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/camsim/internal/domain"
	"github.com/bft-labs/camsim/internal/ports"
)

// ErrUnknownTexture is returned when opening a handle that was never
// created or has been released.
var ErrUnknownTexture = errors.New("softgpu: unknown texture handle")

// ErrNotHeld is returned when releasing a keyed mutex the caller does not hold.
var ErrNotHeld = errors.New("softgpu: keyed mutex not held")

// Registry hands out process-wide texture handles.
type Registry struct {
	mu       sync.RWMutex
	textures map[ports.TextureHandle]*Texture
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{textures: make(map[ports.TextureHandle]*Texture)}
}

// Create allocates a shared texture and returns its handle.
func (r *Registry) Create(desc ports.TextureDesc) (ports.TextureHandle, *Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return 0, nil, fmt.Errorf("softgpu: invalid texture size %dx%d", desc.Width, desc.Height)
	}
	tex := &Texture{
		desc:    desc,
		pix:     make([]byte, desc.Width*desc.Height*4),
		changed: make(chan struct{}),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for {
		id := uuid.New()
		h := ports.TextureHandle(binary.LittleEndian.Uint64(id[:8]))
		if _, taken := r.textures[h]; h == 0 || taken {
			continue
		}
		r.textures[h] = tex
		return h, tex, nil
	}
}

// OpenSharedTexture implements ports.TextureOpener.
func (r *Registry) OpenSharedTexture(h ports.TextureHandle) (ports.SharedTexture, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tex, ok := r.textures[h]
	if !ok {
		return nil, fmt.Errorf("%w: %#x", ErrUnknownTexture, uint64(h))
	}
	return tex, nil
}

// Release forgets a handle. Textures already opened stay usable.
func (r *Registry) Release(h ports.TextureHandle) {
	r.mu.Lock()
	delete(r.textures, h)
	r.mu.Unlock()
}

// Texture is an RGBA8 texture with a keyed mutex. A holder acquires with
// the key the previous holder released with.
type Texture struct {
	desc ports.TextureDesc
	pix  []byte

	mu      sync.Mutex
	held    bool
	key     uint64
	changed chan struct{}
}

// Desc implements ports.SharedTexture.
func (t *Texture) Desc() ports.TextureDesc { return t.desc }

// Pixels implements ports.SharedTexture.
func (t *Texture) Pixels() []byte { return t.pix }

// AcquireSync implements ports.SharedTexture. It fails with
// domain.ErrLockTimeout when the mutex is not released under key in time.
func (t *Texture) AcquireSync(key uint64, timeout time.Duration) error {
	var timer *time.Timer
	for {
		t.mu.Lock()
		if !t.held && t.key == key {
			t.held = true
			t.mu.Unlock()
			if timer != nil {
				timer.Stop()
			}
			return nil
		}
		changed := t.changed
		t.mu.Unlock()

		if timer == nil {
			if timeout <= 0 {
				return domain.ErrLockTimeout
			}
			timer = time.NewTimer(timeout)
		}
		select {
		case <-changed:
		case <-timer.C:
			return domain.ErrLockTimeout
		}
	}
}

// ReleaseSync implements ports.SharedTexture.
func (t *Texture) ReleaseSync(key uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.held {
		return ErrNotHeld
	}
	t.held = false
	t.key = key
	close(t.changed)
	t.changed = make(chan struct{})
	return nil
}
