package softgpu

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/camsim/internal/domain"
	"github.com/bft-labs/camsim/internal/ports"
)

func TestRegistry_CreateAndOpen(t *testing.T) {
	r := NewRegistry()

	h1, tex, err := r.Create(ports.TextureDesc{Width: 4, Height: 2, SRGB: true})
	require.NoError(t, err)
	assert.NotZero(t, h1)
	assert.Len(t, tex.Pixels(), 4*2*4)

	h2, _, err := r.Create(ports.TextureDesc{Width: 1, Height: 1})
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)

	opened, err := r.OpenSharedTexture(h1)
	require.NoError(t, err)
	assert.Equal(t, ports.TextureDesc{Width: 4, Height: 2, SRGB: true}, opened.Desc())

	r.Release(h1)
	_, err = r.OpenSharedTexture(h1)
	assert.ErrorIs(t, err, ErrUnknownTexture)

	_, _, err = r.Create(ports.TextureDesc{})
	assert.Error(t, err)
}

func TestTexture_KeyedMutex(t *testing.T) {
	r := NewRegistry()
	_, tex, err := r.Create(ports.TextureDesc{Width: 1, Height: 1})
	require.NoError(t, err)

	assert.ErrorIs(t, tex.ReleaseSync(0), ErrNotHeld)

	require.NoError(t, tex.AcquireSync(0, time.Millisecond))
	assert.ErrorIs(t, tex.AcquireSync(0, 5*time.Millisecond), domain.ErrLockTimeout)
	require.NoError(t, tex.ReleaseSync(1))

	assert.ErrorIs(t, tex.AcquireSync(0, 5*time.Millisecond), domain.ErrLockTimeout, "wrong key")
	require.NoError(t, tex.AcquireSync(1, time.Millisecond))

	acquired := make(chan error, 1)
	go func() { acquired <- tex.AcquireSync(2, time.Second) }()
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, tex.ReleaseSync(2))

	select {
	case err := <-acquired:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("waiter not woken by release")
	}
}

func TestSurface_CompositeLinearisesAndScales(t *testing.T) {
	r := NewRegistry()
	_, tex, err := r.Create(ports.TextureDesc{Width: 2, Height: 1, SRGB: true})
	require.NoError(t, err)
	copy(tex.Pixels(), []byte{
		255, 188, 0, 255,   // left
		128, 128, 128, 200, // right
	})

	s := NewSurface()
	require.NoError(t, s.Resize(4, 2))
	require.NoError(t, s.Composite(tex))
	require.NoError(t, s.Present(true))

	w, h, pix := s.Frame()
	require.Equal(t, 4, w)
	require.Equal(t, 2, h)

	left := [4]byte{255, 128, 0, 255}
	right := [4]byte{55, 55, 55, 200}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var got [4]byte
			copy(got[:], pix[(y*w+x)*4:])
			want := left
			if x >= 2 {
				want = right
			}
			assert.Equal(t, want, got, "pixel (%d, %d)", x, y)
		}
	}
	assert.Equal(t, SurfaceStats{Resizes: 1, Presents: 1, VSyncs: 1}, s.Stats())
}

func TestSurface_ClearsWhenSourceEmpty(t *testing.T) {
	s := NewSurface()
	require.NoError(t, s.Resize(1, 1))
	require.NoError(t, s.Composite(emptyTexture{}))
	require.NoError(t, s.Present(false))

	_, _, pix := s.Frame()
	assert.Equal(t, []byte{128, 0, 0, 255}, pix)
}

func TestSurface_Unsized(t *testing.T) {
	s := NewSurface()
	assert.Error(t, s.Composite(emptyTexture{}))
	assert.Error(t, s.Present(false))
	assert.Error(t, s.Resize(0, 10))
}

type emptyTexture struct{}

func (emptyTexture) Desc() ports.TextureDesc                 { return ports.TextureDesc{} }
func (emptyTexture) Pixels() []byte                          { return nil }
func (emptyTexture) AcquireSync(uint64, time.Duration) error { return nil }
func (emptyTexture) ReleaseSync(uint64) error                { return nil }

func TestWindow(t *testing.T) {
	w := NewWindow(10, 20, 2048, 1024)
	assert.False(t, w.Visible())

	w.Show()
	assert.True(t, w.Visible())

	require.NoError(t, w.Resize(640, 480))
	width, height, err := w.Size()
	require.NoError(t, err)
	assert.Equal(t, 640, width)
	assert.Equal(t, 480, height)

	x, y, _, _ := w.Bounds()
	assert.Equal(t, 10, x)
	assert.Equal(t, 20, y)

	assert.Error(t, w.Resize(-1, 10))
}

// recordingDisplay opens each presented texture the way a display would.
type recordingDisplay struct {
	registry *Registry
	mu       sync.Mutex
	infos    []domain.PresentInfo
	waits    int
	fail     error
}

func (d *recordingDisplay) Present(info domain.PresentInfo) error {
	if d.fail != nil {
		return d.fail
	}
	tex, err := d.registry.OpenSharedTexture(ports.TextureHandle(info.Texture))
	if err != nil {
		return err
	}
	if err := tex.AcquireSync(syncKey, time.Second); err != nil {
		return err
	}
	defer tex.ReleaseSync(syncKey)

	d.mu.Lock()
	d.infos = append(d.infos, info)
	d.mu.Unlock()
	return nil
}

func (d *recordingDisplay) WaitForPresent() {
	d.mu.Lock()
	d.waits++
	d.mu.Unlock()
}

func (d *recordingDisplay) snapshot() ([]domain.PresentInfo, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domain.PresentInfo(nil), d.infos...), d.waits
}

func TestCompositor_Run(t *testing.T) {
	r := NewRegistry()
	d := &recordingDisplay{registry: r}
	c := NewCompositor(d, r, CompositorConfig{Width: 4, Height: 4, RefreshRate: 500}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool { return c.Frames() >= 3 }, 2*time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	infos, waits := d.snapshot()
	require.GreaterOrEqual(t, len(infos), 3)
	assert.Equal(t, len(infos), waits)
	for i, info := range infos {
		assert.Equal(t, uint64(i+1), info.FrameID)
		assert.Equal(t, domain.VSyncWaitRender, info.VSync)
		assert.Equal(t, infos[0].Texture, info.Texture)
	}

	_, err := r.OpenSharedTexture(ports.TextureHandle(infos[0].Texture))
	assert.ErrorIs(t, err, ErrUnknownTexture, "texture released on exit")
}

func TestCompositor_PresentErrorEndsRun(t *testing.T) {
	r := NewRegistry()
	boom := errors.New("display gone")
	d := &recordingDisplay{registry: r, fail: boom}
	c := NewCompositor(d, r, CompositorConfig{Width: 2, Height: 2, RefreshRate: 500}, nil)

	err := c.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, c.Frames())
}
