package ports

import (
	"time"

	"github.com/bft-labs/camsim/internal/domain"
)

// BlockQueue is the host channel transport.
//
// Errors returned by implementations are domain.QueueError values.
// Buffers returned by read acquires must be treated as read-only and are only
// valid until the matching release.
type BlockQueue interface {
	// Create creates a named channel and returns the owner's connection.
	// Fails with ErrQueueAlreadyExists if the name is taken.
	Create(name string, blockDataSize, blockHeaderSize, blockCount uint32, flags domain.CreationFlag) (domain.ContainerHandle, error)

	// Connect opens a reader connection to an existing channel.
	// Fails with ErrQueueNotFound if no such channel exists.
	Connect(name string) (domain.ContainerHandle, error)

	// Destroy closes a connection. Destroying the owner's connection removes
	// the channel.
	Destroy(queue domain.ContainerHandle) error

	// AcquireWriteOnlyBlock returns a block for exclusive writing with a
	// buffer of exactly blockDataSize bytes.
	AcquireWriteOnlyBlock(queue domain.ContainerHandle) (domain.ContainerHandle, []byte, error)

	// ReleaseWriteOnlyBlock publishes the block to readers.
	ReleaseWriteOnlyBlock(queue, block domain.ContainerHandle) error

	// WaitAndAcquireReadOnlyBlock waits up to timeout for a block matching mode.
	// Returns ErrBlockNotAvailable when the timeout elapses.
	WaitAndAcquireReadOnlyBlock(queue domain.ContainerHandle, mode domain.ReadMode, timeout time.Duration) (domain.ContainerHandle, []byte, error)

	// AcquireReadOnlyBlock returns a block matching mode without waiting.
	AcquireReadOnlyBlock(queue domain.ContainerHandle, mode domain.ReadMode) (domain.ContainerHandle, []byte, error)

	// ReleaseReadOnlyBlock returns a read block to the channel.
	ReleaseReadOnlyBlock(queue, block domain.ContainerHandle) error

	// QueueHasReader reports whether any connection other than the owner is open.
	QueueHasReader(queue domain.ContainerHandle) (bool, error)
}
