package channel

import (
	"fmt"

	"github.com/bft-labs/camsim/internal/domain"
)

// block is the state shared by both guard kinds. A guard belongs to the
// goroutine that acquired it.
type block struct {
	ch       *Channel
	handle   domain.ContainerHandle
	buf      []byte
	released bool
}

// Handle returns the host block handle.
func (b *block) Handle() domain.ContainerHandle { return b.handle }

// Released reports whether the guard has been released.
func (b *block) Released() bool { return b.released }

// consume marks the guard released and drops its buffer so stale views
// cannot be written after publication.
func (b *block) consume() error {
	if b.released {
		return domain.ErrBlockReleased
	}
	b.released = true
	b.buf = nil
	b.ch.track(-1)
	return nil
}

// WriteBlock is an exclusively held block being filled by a producer.
type WriteBlock struct {
	block
}

// Buffer returns the block payload. It has exactly the channel's block data
// size and is nil after Release.
func (b *WriteBlock) Buffer() []byte { return b.buf }

// WriteFields attaches per-frame fields to the block, one request each.
// All fields are attempted; failures are joined.
func (b *WriteBlock) WriteFields(fields ...Field) error {
	if b.released {
		return domain.ErrBlockReleased
	}
	return b.ch.client.writeFields(b.handle, fields)
}

// Release publishes the block to readers and invalidates the guard.
func (b *WriteBlock) Release() error {
	h := b.handle
	if err := b.consume(); err != nil {
		return err
	}
	if err := b.ch.client.queue.ReleaseWriteOnlyBlock(b.ch.handle, h); err != nil {
		return fmt.Errorf("release write block on %s: %w", b.ch.name, err)
	}
	return nil
}

// ReadBlock is a published block held for reading.
type ReadBlock struct {
	block
}

// Data returns the block payload. It must not be modified and is nil after
// Release.
func (b *ReadBlock) Data() []byte { return b.buf }

// ReadFields reads per-frame fields from the block, one request each.
// All targets are attempted; failures are joined.
func (b *ReadBlock) ReadFields(targets ...Target) error {
	if b.released {
		return domain.ErrBlockReleased
	}
	return b.ch.client.readFields(b.handle, targets)
}

// Release returns the block to the channel and invalidates the guard.
func (b *ReadBlock) Release() error {
	h := b.handle
	if err := b.consume(); err != nil {
		return err
	}
	if err := b.ch.client.queue.ReleaseReadOnlyBlock(b.ch.handle, h); err != nil {
		return fmt.Errorf("release read block on %s: %w", b.ch.name, err)
	}
	return nil
}
