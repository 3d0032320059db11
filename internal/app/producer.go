package app

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bft-labs/camsim/internal/channel"
	"github.com/bft-labs/camsim/internal/domain"
	"github.com/bft-labs/camsim/internal/ports"
	"github.com/bft-labs/camsim/pkg/log"
)

// Default producer timing.
const (
	DefaultFramePeriod    = 16 * time.Millisecond
	DefaultCaptureLatency = 40 * time.Millisecond
)

// FrameWriter publishes write blocks on a frame channel.
type FrameWriter interface {
	WithWriteBlock(fn func(*channel.WriteBlock) error) error
}

// FrameSink observes the metadata of every published frame.
type FrameSink func(domain.FrameMetadata)

// ProducerConfig contains configuration for the frame producer.
type ProducerConfig struct {
	Geometry       domain.Geometry
	Period         time.Duration
	CaptureLatency time.Duration
}

// DefaultProducerConfig returns the producer configuration for a stereo
// stream with eyeW x eyeH images per eye.
func DefaultProducerConfig(eyeW, eyeH int) ProducerConfig {
	return ProducerConfig{
		Geometry:       domain.StereoGeometry(eyeW, eyeH),
		Period:         DefaultFramePeriod,
		CaptureLatency: DefaultCaptureLatency,
	}
}

// ProducerStats holds producer counters.
type ProducerStats struct {
	Frames          uint64
	Published       uint64
	AcquireFailures uint64
	FieldFailures   uint64
	ReleaseFailures uint64
}

// ProducerStatus is a point-in-time view of the producer.
type ProducerStatus struct {
	Active       bool
	Paused       bool
	FrameCount   uint64
	Sequence     uint64
	Elapsed      time.Duration
	FirstStarted time.Time
}

// Producer renders the synthetic stream into a frame channel on a fixed
// cadence.
type Producer struct {
	writer  FrameWriter
	cfg     ProducerConfig
	clock   ports.Clock
	logger  log.Logger
	epoch   time.Time
	pattern []byte

	mu           sync.Mutex // guards run state below
	cancel       context.CancelFunc
	done         chan struct{}
	startTime    time.Time
	firstStarted time.Time

	// owned by the worker goroutine
	lastShifted time.Time

	paused          atomic.Bool
	frameCount      atomic.Uint64
	sequence        atomic.Uint64
	published       atomic.Uint64
	acquireFailures atomic.Uint64
	fieldFailures   atomic.Uint64
	releaseFailures atomic.Uint64

	sinkMu sync.RWMutex
	sink   FrameSink
}

// NewProducer creates a producer writing to w. The test pattern is rendered
// once here and copied into every block.
func NewProducer(w FrameWriter, cfg ProducerConfig, clock ports.Clock, logger log.Logger) *Producer {
	if cfg.Period <= 0 {
		cfg.Period = DefaultFramePeriod
	}
	if clock == nil {
		clock = SystemClock()
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	pattern := make([]byte, cfg.Geometry.FrameSize())
	RenderPattern(pattern, cfg.Geometry)

	return &Producer{
		writer:  w,
		cfg:     cfg,
		clock:   clock,
		logger:  logger,
		epoch:   clock.Now(),
		pattern: pattern,
	}
}

// SetSink installs the callback invoked after each published frame.
func (p *Producer) SetSink(sink FrameSink) {
	p.sinkMu.Lock()
	p.sink = sink
	p.sinkMu.Unlock()
}

// Start launches the worker. It is a no-op while a worker is running.
// Starting clears a previous pause.
func (p *Producer) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return
	}
	if p.done != nil {
		<-p.done
	}

	p.resetTiming()
	p.paused.Store(false)

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(ctx, p.done)

	p.logger.Info("frame producer started",
		log.Int("width", p.cfg.Geometry.Width),
		log.Int("height", p.cfg.Geometry.Height),
		log.Duration("period", p.cfg.Period),
	)
}

// Stop signals the worker and waits for it to exit. Safe to call when the
// producer is not running.
func (p *Producer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel == nil {
		return
	}
	p.cancel()
	p.cancel = nil
	<-p.done
	p.done = nil

	p.logger.Info("frame producer stopped",
		log.Uint64("frames", p.frameCount.Load()),
	)
}

// Pause suspends frame production. Calling it twice is the same as once.
func (p *Producer) Pause() {
	if !p.paused.Swap(true) {
		p.logger.Debug("frame producer paused")
	}
}

// Resume restarts frame production after Pause.
func (p *Producer) Resume() {
	if p.paused.Swap(false) {
		p.logger.Debug("frame producer resumed")
	}
}

// Status returns the current producer state.
func (p *Producer) Status() ProducerStatus {
	p.mu.Lock()
	active := p.cancel != nil
	start := p.startTime
	first := p.firstStarted
	p.mu.Unlock()

	var elapsed time.Duration
	if active {
		elapsed = p.clock.Now().Sub(start)
	}
	return ProducerStatus{
		Active:       active,
		Paused:       p.paused.Load(),
		FrameCount:   p.frameCount.Load(),
		Sequence:     p.sequence.Load(),
		Elapsed:      elapsed,
		FirstStarted: first,
	}
}

// Stats returns the producer counters.
func (p *Producer) Stats() ProducerStats {
	return ProducerStats{
		Frames:          p.frameCount.Load(),
		Published:       p.published.Load(),
		AcquireFailures: p.acquireFailures.Load(),
		FieldFailures:   p.fieldFailures.Load(),
		ReleaseFailures: p.releaseFailures.Load(),
	}
}

// resetTiming restarts the elapsed and delivery-rate references. Callers
// hold p.mu and no worker is running.
func (p *Producer) resetTiming() {
	now := p.clock.Now()
	p.startTime = now
	p.lastShifted = now.Add(-p.cfg.CaptureLatency)
	if p.firstStarted.IsZero() {
		p.firstStarted = now
	}
}

func (p *Producer) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.cfg.Period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			p.tick()
		}
	}
}

// tick produces one frame unless paused. The counters advance before the
// block is acquired, so a failed acquire still consumes a sequence number.
func (p *Producer) tick() {
	if p.paused.Load() {
		return
	}

	frame := p.frameCount.Add(1)
	seq := (p.sequence.Load() + 1) % domain.SequenceModulus
	p.sequence.Store(seq)

	var (
		meta     domain.FrameMetadata
		acquired bool
	)
	err := p.writer.WithWriteBlock(func(b *channel.WriteBlock) error {
		acquired = true
		copy(b.Buffer(), p.pattern)
		meta = p.stamp(seq)
		if err := channel.WriteMetadata(b, meta); err != nil {
			p.fieldFailures.Add(1)
			p.logger.Warn("frame metadata incomplete",
				log.Uint64("frame", frame),
				log.Err(err),
			)
		}
		return nil
	})
	if err != nil {
		if !acquired {
			p.acquireFailures.Add(1)
			p.logger.Warn("no write block available, frame skipped",
				log.Uint64("frame", frame),
				log.Err(err),
			)
			return
		}
		p.releaseFailures.Add(1)
		p.logger.Warn("failed to publish frame",
			log.Uint64("frame", frame),
			log.Err(err),
		)
		return
	}
	p.published.Add(1)

	p.sinkMu.RLock()
	sink := p.sink
	p.sinkMu.RUnlock()
	if sink != nil {
		sink(meta)
	}
}

// stamp computes the timing metadata for a frame captured now. The capture
// time is shifted back by the configured latency.
func (p *Producer) stamp(seq uint64) domain.FrameMetadata {
	now := p.clock.Now()
	shifted := now.Add(-p.cfg.CaptureLatency)
	sinceEpoch := shifted.Sub(p.epoch)

	var ticks uint64
	if sinceEpoch > 0 {
		ticks = uint64(sinceEpoch.Nanoseconds())
	}
	meta := domain.FrameMetadata{
		FrameSize:            int32(p.cfg.Geometry.FrameSize()),
		FrameSequence:        seq,
		CaptureTimeMonotonic: sinceEpoch.Seconds(),
		ServerTimeTicks:      ticks,
		DeliveryRate:         shifted.Sub(p.lastShifted).Seconds(),
		ElapsedTime:          now.Sub(p.startTime).Seconds(),
	}
	p.lastShifted = shifted
	return meta
}
