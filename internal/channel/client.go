package channel

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bft-labs/camsim/internal/domain"
	"github.com/bft-labs/camsim/internal/ports"
	"github.com/bft-labs/camsim/pkg/log"
)

// ErrBlocksOutstanding is returned by Destroy while a block is still held.
var ErrBlocksOutstanding = errors.New("channel: blocks still acquired")

// Layout describes the shape of a channel at creation.
type Layout struct {
	BlockDataSize   uint32
	BlockHeaderSize uint32
	SlotCount       uint32
	Flags           domain.CreationFlag
}

// FrameLayout returns the layout of a raw frames channel for g.
func FrameLayout(g domain.Geometry) Layout {
	return Layout{
		BlockDataSize:   uint32(g.FrameSize()),
		BlockHeaderSize: domain.DefaultHeaderSize,
		SlotCount:       domain.DefaultSlotCount,
	}
}

// Client opens channels on a host transport.
type Client struct {
	queue  ports.BlockQueue
	paths  ports.Paths
	logger log.Logger
}

// NewClient creates a client. A nil logger discards output.
func NewClient(queue ports.BlockQueue, paths ports.Paths, logger log.Logger) *Client {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Client{queue: queue, paths: paths, logger: logger}
}

// Create creates a named channel owned by the caller.
func (c *Client) Create(name string, layout Layout) (*Channel, error) {
	if layout.BlockDataSize == 0 || layout.SlotCount == 0 {
		return nil, fmt.Errorf("create %s: %w", name, domain.ErrInvalidParam)
	}
	h, err := c.queue.Create(name, layout.BlockDataSize, layout.BlockHeaderSize, layout.SlotCount, layout.Flags)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", name, err)
	}
	c.logger.Info("channel created",
		log.String("channel", name),
		log.Uint32("block_size", layout.BlockDataSize),
		log.Uint32("slots", layout.SlotCount),
	)
	return &Channel{client: c, name: name, handle: h, owner: true}, nil
}

// Connect opens an existing channel for reading.
func (c *Client) Connect(name string) (*Channel, error) {
	h, err := c.queue.Connect(name)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", name, err)
	}
	c.logger.Debug("channel connected", log.String("channel", name))
	return &Channel{client: c, name: name, handle: h}, nil
}

// Channel is an open connection to a named channel.
type Channel struct {
	client *Client
	name   string
	handle domain.ContainerHandle
	owner  bool

	mu          sync.Mutex
	outstanding int
	destroyed   bool
}

// Name returns the channel name.
func (ch *Channel) Name() string { return ch.name }

// Handle returns the host connection handle.
func (ch *Channel) Handle() domain.ContainerHandle { return ch.handle }

// Owner reports whether this connection created the channel.
func (ch *Channel) Owner() bool { return ch.owner }

// Destroy closes the connection. It fails while any block acquired through
// this channel is still held. Destroying twice is a no-op.
func (ch *Channel) Destroy() error {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	if ch.destroyed {
		return nil
	}
	if ch.outstanding > 0 {
		return fmt.Errorf("destroy %s: %w (%d held)", ch.name, ErrBlocksOutstanding, ch.outstanding)
	}
	if err := ch.client.queue.Destroy(ch.handle); err != nil {
		return fmt.Errorf("destroy %s: %w", ch.name, err)
	}
	ch.destroyed = true
	ch.client.logger.Debug("channel destroyed", log.String("channel", ch.name))
	return nil
}

// HasReader reports whether a reader is connected to the channel.
func (ch *Channel) HasReader() (bool, error) {
	if err := ch.checkOpen(); err != nil {
		return false, err
	}
	ok, err := ch.client.queue.QueueHasReader(ch.handle)
	if err != nil {
		return false, fmt.Errorf("query readers on %s: %w", ch.name, err)
	}
	return ok, nil
}

// AcquireWrite acquires a block for exclusive writing. The caller must call
// Release on the returned guard; prefer WithWriteBlock.
func (ch *Channel) AcquireWrite() (*WriteBlock, error) {
	if err := ch.checkOpen(); err != nil {
		return nil, err
	}
	h, buf, err := ch.client.queue.AcquireWriteOnlyBlock(ch.handle)
	if err != nil {
		return nil, fmt.Errorf("acquire write block on %s: %w", ch.name, err)
	}
	ch.track(1)
	return &WriteBlock{block: block{ch: ch, handle: h, buf: buf}}, nil
}

// AcquireRead acquires a published block. A positive timeout waits for a
// matching block; otherwise the call returns immediately. Returns an error
// matching domain.ErrBlockNotAvailable when no block matches.
func (ch *Channel) AcquireRead(mode domain.ReadMode, timeout time.Duration) (*ReadBlock, error) {
	if err := ch.checkOpen(); err != nil {
		return nil, err
	}
	var (
		h   domain.ContainerHandle
		buf []byte
		err error
	)
	if timeout > 0 {
		h, buf, err = ch.client.queue.WaitAndAcquireReadOnlyBlock(ch.handle, mode, timeout)
	} else {
		h, buf, err = ch.client.queue.AcquireReadOnlyBlock(ch.handle, mode)
	}
	if err != nil {
		return nil, fmt.Errorf("acquire read block (%s) on %s: %w", mode, ch.name, err)
	}
	ch.track(1)
	return &ReadBlock{block: block{ch: ch, handle: h, buf: buf}}, nil
}

// WithWriteBlock acquires a write block, runs fn and releases the block on
// every exit path. A release failure is returned when fn succeeded.
func (ch *Channel) WithWriteBlock(fn func(*WriteBlock) error) (err error) {
	b, err := ch.AcquireWrite()
	if err != nil {
		return err
	}
	defer func() {
		if b.released {
			return
		}
		if rerr := b.Release(); rerr != nil && err == nil {
			err = rerr
		}
	}()
	return fn(b)
}

// WithReadBlock acquires a read block, runs fn and releases the block on
// every exit path.
func (ch *Channel) WithReadBlock(mode domain.ReadMode, timeout time.Duration, fn func(*ReadBlock) error) (err error) {
	b, err := ch.AcquireRead(mode, timeout)
	if err != nil {
		return err
	}
	defer func() {
		if b.released {
			return
		}
		if rerr := b.Release(); rerr != nil && err == nil {
			err = rerr
		}
	}()
	return fn(b)
}

// WriteFields writes static fields on the channel itself, one request each.
func (ch *Channel) WriteFields(fields ...Field) error {
	if err := ch.checkOpen(); err != nil {
		return err
	}
	return ch.client.writeFields(ch.handle, fields)
}

// ReadFields reads static fields from the channel, one request each.
func (ch *Channel) ReadFields(targets ...Target) error {
	if err := ch.checkOpen(); err != nil {
		return err
	}
	return ch.client.readFields(ch.handle, targets)
}

// Outstanding returns the number of blocks currently held.
func (ch *Channel) Outstanding() int {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.outstanding
}

func (ch *Channel) checkOpen() error {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.destroyed {
		return fmt.Errorf("%s: %w", ch.name, domain.ErrChannelDestroyed)
	}
	return nil
}

func (ch *Channel) track(delta int) {
	ch.mu.Lock()
	ch.outstanding += delta
	ch.mu.Unlock()
}
