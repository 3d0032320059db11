package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bft-labs/camsim/internal/channel"
	"github.com/bft-labs/camsim/internal/domain"
	"github.com/bft-labs/camsim/pkg/log"
)

// DefaultReadTimeout bounds each wait for a new block.
const DefaultReadTimeout = 100 * time.Millisecond

// FrameReader acquires read blocks from a frame channel.
type FrameReader interface {
	WithReadBlock(mode domain.ReadMode, timeout time.Duration, fn func(*channel.ReadBlock) error) error
}

// ConsumerConfig contains configuration for the frame consumer.
type ConsumerConfig struct {
	Mode    domain.ReadMode
	Timeout time.Duration
}

// DefaultConsumerConfig reads every frame in order.
func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		Mode:    domain.ReadNext,
		Timeout: DefaultReadTimeout,
	}
}

// Observation describes one consumed frame.
type Observation struct {
	Metadata domain.FrameMetadata
	Size     int
	// Skipped is the number of sequence numbers missed before this frame,
	// modulo the sequence range.
	Skipped uint64
	// FieldErr joins the per-field read failures, if any.
	FieldErr error
}

// ConsumerStats holds consumer counters.
type ConsumerStats struct {
	Frames        uint64
	NotAvailable  uint64
	FieldFailures uint64
	Gaps          uint64
}

// Consumer drains a frame channel until cancelled.
type Consumer struct {
	reader FrameReader
	cfg    ConsumerConfig
	logger log.Logger

	observeMu sync.RWMutex
	observe   func(Observation)

	// owned by Run
	lastSeq uint64
	haveSeq bool

	frames        atomic.Uint64
	notAvailable  atomic.Uint64
	fieldFailures atomic.Uint64
	gaps          atomic.Uint64
}

// NewConsumer creates a consumer reading from r.
func NewConsumer(r FrameReader, cfg ConsumerConfig, logger log.Logger) *Consumer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultReadTimeout
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Consumer{reader: r, cfg: cfg, logger: logger}
}

// OnFrame installs a callback invoked for every consumed frame, while the
// block is still held.
func (c *Consumer) OnFrame(fn func(Observation)) {
	c.observeMu.Lock()
	c.observe = fn
	c.observeMu.Unlock()
}

// Run reads blocks until ctx is done. A read that finds no block is
// counted and retried; any other failure ends the loop and is returned.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := c.reader.WithReadBlock(c.cfg.Mode, c.cfg.Timeout, c.consume)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrBlockNotAvailable):
			c.notAvailable.Add(1)
		default:
			c.logger.Error("frame consumer stopped", log.Err(err))
			return err
		}
	}
}

// Stats returns the consumer counters.
func (c *Consumer) Stats() ConsumerStats {
	return ConsumerStats{
		Frames:        c.frames.Load(),
		NotAvailable:  c.notAvailable.Load(),
		FieldFailures: c.fieldFailures.Load(),
		Gaps:          c.gaps.Load(),
	}
}

func (c *Consumer) consume(b *channel.ReadBlock) error {
	meta, ferr := channel.ReadMetadata(b)
	if ferr != nil {
		c.fieldFailures.Add(1)
		c.logger.Warn("frame metadata incomplete", log.Err(ferr))
	}

	var skipped uint64
	if c.haveSeq {
		expected := (c.lastSeq + 1) % domain.SequenceModulus
		skipped = (meta.FrameSequence + domain.SequenceModulus - expected) % domain.SequenceModulus
		if skipped > 0 {
			c.gaps.Add(1)
			c.logger.Debug("frame sequence gap",
				log.Uint64("expected", expected),
				log.Uint64("got", meta.FrameSequence),
			)
		}
	}
	c.lastSeq = meta.FrameSequence
	c.haveSeq = true
	c.frames.Add(1)

	c.observeMu.RLock()
	observe := c.observe
	c.observeMu.RUnlock()
	if observe != nil {
		observe(Observation{
			Metadata: meta,
			Size:     len(b.Data()),
			Skipped:  skipped,
			FieldErr: ferr,
		})
	}
	return nil
}

// Connector opens an existing channel by name.
type Connector interface {
	Connect(name string) (*channel.Channel, error)
}

// ConnectWithRetry connects to name, backing off while the channel does
// not exist yet. Other errors are returned immediately.
func ConnectWithRetry(ctx context.Context, c Connector, name string, logger log.Logger) (*channel.Channel, error) {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	b := newBackoff(DefaultBackoffInitial, DefaultBackoffMax)
	for {
		ch, err := c.Connect(name)
		if err == nil {
			return ch, nil
		}
		if !errors.Is(err, domain.ErrQueueNotFound) {
			return nil, err
		}
		logger.Debug("channel not found, retrying",
			log.String("channel", name),
			log.Duration("backoff", b.Current()),
		)
		if err := b.Wait(ctx); err != nil {
			return nil, err
		}
	}
}
