package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent error conditions in the camsim domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running instance.
	ErrAlreadyRunning = errors.New("camsim: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped instance.
	ErrNotRunning = errors.New("camsim: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("camsim: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("camsim: invalid configuration")

	// ErrBlockReleased is returned when a block guard is used after release.
	ErrBlockReleased = errors.New("camsim: block already released")

	// ErrChannelDestroyed is returned when a destroyed channel is used.
	ErrChannelDestroyed = errors.New("camsim: channel destroyed")

	// ErrTextureOpen is returned when a shared texture cannot be opened.
	ErrTextureOpen = errors.New("camsim: shared texture open failed")

	// ErrLockTimeout is returned when the keyed mutex of a shared texture
	// could not be acquired within the timeout.
	ErrLockTimeout = errors.New("camsim: keyed mutex timeout")
)

// QueueError is an error code returned by the block queue transport.
type QueueError int

const (
	QueueErrNone             QueueError = 0
	ErrQueueAlreadyExists    QueueError = 1
	ErrQueueNotFound         QueueError = 2
	ErrBlockNotAvailable     QueueError = 3
	ErrInvalidHandle         QueueError = 4
	ErrInvalidParam          QueueError = 5
	ErrParamMismatch         QueueError = 6
	ErrInternalError         QueueError = 7
	ErrAlreadyInitialized    QueueError = 8
	ErrOperationIsServerOnly QueueError = 9
	ErrTooManyConnections    QueueError = 10
)

var queueErrorNames = map[QueueError]string{
	QueueErrNone:             "none",
	ErrQueueAlreadyExists:    "queue already exists",
	ErrQueueNotFound:         "queue not found",
	ErrBlockNotAvailable:     "block not available",
	ErrInvalidHandle:         "invalid handle",
	ErrInvalidParam:          "invalid param",
	ErrParamMismatch:         "param mismatch",
	ErrInternalError:         "internal error",
	ErrAlreadyInitialized:    "already initialized",
	ErrOperationIsServerOnly: "operation is server only",
	ErrTooManyConnections:    "too many connections",
}

// Error implements error.
func (e QueueError) Error() string {
	if name, ok := queueErrorNames[e]; ok {
		return "blockqueue: " + name
	}
	return fmt.Sprintf("blockqueue: error %d", int(e))
}

// IsFatalQueueError reports whether err must stop the loop that received it.
// BlockNotAvailable is expected under low frame rates and is never fatal.
func IsFatalQueueError(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrBlockNotAvailable)
}

// PropertyError is an error code returned by the property and path store.
type PropertyError int

const (
	PropErrWrongDataType              PropertyError = 1
	PropErrWrongDeviceClass           PropertyError = 2
	PropErrBufferTooSmall             PropertyError = 3
	PropErrUnknownProperty            PropertyError = 4
	PropErrInvalidDevice              PropertyError = 5
	PropErrCouldNotContactServer      PropertyError = 6
	PropErrValueNotProvidedByDevice   PropertyError = 7
	PropErrStringExceedsMaximumLength PropertyError = 8
	PropErrNotYetAvailable            PropertyError = 9
	PropErrPermissionDenied           PropertyError = 10
	PropErrInvalidOperation           PropertyError = 11
	PropErrCannotWriteToWildcards     PropertyError = 12
	PropErrIPCReadFailure             PropertyError = 13
	PropErrOutOfMemory                PropertyError = 14
	PropErrInvalidContainer           PropertyError = 15
)

var propertyErrorNames = map[PropertyError]string{
	PropErrWrongDataType:              "wrong data type",
	PropErrWrongDeviceClass:           "wrong device class",
	PropErrBufferTooSmall:             "buffer too small",
	PropErrUnknownProperty:            "unknown property",
	PropErrInvalidDevice:              "invalid device",
	PropErrCouldNotContactServer:      "could not contact server",
	PropErrValueNotProvidedByDevice:   "value not provided by device",
	PropErrStringExceedsMaximumLength: "string exceeds maximum length",
	PropErrNotYetAvailable:            "not yet available",
	PropErrPermissionDenied:           "permission denied",
	PropErrInvalidOperation:           "invalid operation",
	PropErrCannotWriteToWildcards:     "cannot write to wildcards",
	PropErrIPCReadFailure:             "ipc read failure",
	PropErrOutOfMemory:                "out of memory",
	PropErrInvalidContainer:           "invalid container",
}

// Error implements error.
func (e PropertyError) Error() string {
	if name, ok := propertyErrorNames[e]; ok {
		return "property: " + name
	}
	return fmt.Sprintf("property: error %d", int(e))
}
