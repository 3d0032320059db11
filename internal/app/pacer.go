package app

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bft-labs/camsim/internal/domain"
	"github.com/bft-labs/camsim/internal/ports"
	"github.com/bft-labs/camsim/pkg/log"
)

// Default pacer settings.
const (
	DefaultRefreshRate = 60
	DefaultLockTimeout = 10 * time.Millisecond
)

// syncKey is the keyed mutex value shared with the compositor.
const syncKey = 0

// PacerConfig contains configuration for the frame pacer.
type PacerConfig struct {
	RefreshRate int
	LockTimeout time.Duration
}

// DefaultPacerConfig returns a 60 Hz pacer with a 10ms texture lock budget.
func DefaultPacerConfig() PacerConfig {
	return PacerConfig{
		RefreshRate: DefaultRefreshRate,
		LockTimeout: DefaultLockTimeout,
	}
}

// PacerStats holds pacer counters.
type PacerStats struct {
	Composited uint64
	Dropped    uint64
	Resizes    uint64
}

// Pacer composites submitted textures into the output surface and keeps a
// virtual vsync clock for callers that ask how long ago the last vsync was.
type Pacer struct {
	textures ports.TextureOpener
	surface  ports.Surface
	window   ports.Window
	clock    ports.Clock
	logger   log.Logger
	cfg      PacerConfig
	interval time.Duration

	mu           sync.Mutex // serializes Submit and FinishAndWait
	waitForVsync bool
	presentVsync bool
	width        int
	height       int

	state      atomic.Pointer[domain.PacerSnapshot]
	composited atomic.Uint64
	dropped    atomic.Uint64
	resizes    atomic.Uint64
}

// NewPacer sizes the surface to the window and starts the vsync clock.
func NewPacer(textures ports.TextureOpener, surface ports.Surface, window ports.Window, clock ports.Clock, cfg PacerConfig, logger log.Logger) (*Pacer, error) {
	if cfg.RefreshRate <= 0 {
		cfg.RefreshRate = DefaultRefreshRate
	}
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = DefaultLockTimeout
	}
	if clock == nil {
		clock = SystemClock()
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	p := &Pacer{
		textures: textures,
		surface:  surface,
		window:   window,
		clock:    clock,
		logger:   logger,
		cfg:      cfg,
		interval: time.Second / time.Duration(cfg.RefreshRate),
	}

	w, h, err := window.Size()
	if err != nil {
		return nil, fmt.Errorf("query window size: %w", err)
	}
	if err := surface.Resize(w, h); err != nil {
		return nil, fmt.Errorf("size output surface: %w", err)
	}
	p.width, p.height = w, h

	p.state.Store(&domain.PacerSnapshot{LastVsync: clock.Now()})
	return p, nil
}

// Interval returns the duration of one virtual refresh.
func (p *Pacer) Interval() time.Duration { return p.interval }

// Submit composites the shared texture into the output surface.
//
// A texture that cannot be opened is an error. A texture whose lock cannot
// be taken within the lock budget is dropped and Submit returns nil.
func (p *Pacer) Submit(handle ports.TextureHandle, waitForVsync bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.waitForVsync = waitForVsync
	p.presentVsync = waitForVsync && p.state.Load().HasVsyncTime

	tex, err := p.textures.OpenSharedTexture(handle)
	if err != nil {
		p.logger.Error("failed to open shared texture",
			log.Handle("texture", uint64(handle)),
			log.Err(err),
		)
		return fmt.Errorf("%w %#x: %w", domain.ErrTextureOpen, uint64(handle), err)
	}

	if err := tex.AcquireSync(syncKey, p.cfg.LockTimeout); err != nil {
		p.dropped.Add(1)
		p.logger.Warn("texture lock not acquired, frame dropped",
			log.Handle("texture", uint64(handle)),
			log.Err(err),
		)
		return nil
	}
	defer func() {
		if err := tex.ReleaseSync(syncKey); err != nil {
			p.logger.Warn("failed to release texture lock",
				log.Handle("texture", uint64(handle)),
				log.Err(err),
			)
		}
	}()

	if !p.window.Visible() {
		p.window.Show()
	}
	p.syncOutputSize()

	if err := p.surface.Composite(tex); err != nil {
		p.dropped.Add(1)
		p.logger.Warn("composite failed, frame dropped", log.Err(err))
		return nil
	}
	p.composited.Add(1)
	return nil
}

// syncOutputSize resizes the surface when the window size changed.
func (p *Pacer) syncOutputSize() {
	w, h, err := p.window.Size()
	if err != nil {
		p.logger.Warn("failed to query window size", log.Err(err))
		return
	}
	if w == p.width && h == p.height {
		return
	}
	if err := p.surface.Resize(w, h); err != nil {
		p.logger.Warn("failed to resize output surface",
			log.Int("width", w),
			log.Int("height", h),
			log.Err(err),
		)
		return
	}
	p.width, p.height = w, h
	p.resizes.Add(1)
}

// FinishAndWait presents the output and advances the vsync clock.
//
// When the last submit waited for vsync, or no vsync has been recorded yet,
// the clock is stamped with the current time. Otherwise it advances by the
// whole number of refresh intervals elapsed since the last vsync.
func (p *Pacer) FinishAndWait() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.surface.Present(p.presentVsync); err != nil {
		p.logger.Warn("present failed", log.Err(err))
	}

	now := p.clock.Now()
	next := *p.state.Load()
	if !next.HasVsyncTime || p.waitForVsync {
		next.HasVsyncTime = true
		next.LastVsync = now
		next.FrameCount++
	} else {
		var frames int64
		if elapsed := now.Sub(next.LastVsync); elapsed > 0 {
			frames = int64(elapsed / p.interval)
		}
		next.LastVsync = next.LastVsync.Add(time.Duration(frames) * p.interval)
		next.FrameCount += uint64(frames)
	}
	p.state.Store(&next)
}

// TimeSinceLastVsync returns the seconds elapsed since the last virtual
// vsync and the vsync counter. It never blocks on the pacer lock.
func (p *Pacer) TimeSinceLastVsync() (float64, uint64) {
	s := p.state.Load()
	return p.clock.Now().Sub(s.LastVsync).Seconds(), s.FrameCount
}

// Snapshot returns the current vsync clock.
func (p *Pacer) Snapshot() domain.PacerSnapshot {
	return *p.state.Load()
}

// Stats returns the pacer counters.
func (p *Pacer) Stats() PacerStats {
	return PacerStats{
		Composited: p.composited.Load(),
		Dropped:    p.dropped.Load(),
		Resizes:    p.resizes.Load(),
	}
}
