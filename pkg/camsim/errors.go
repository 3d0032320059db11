package camsim

import "github.com/bft-labs/camsim/internal/domain"

// Errors returned by Device. Check with errors.Is.
var (
	ErrAlreadyRunning  = domain.ErrAlreadyRunning
	ErrNotRunning      = domain.ErrNotRunning
	ErrShutdownTimeout = domain.ErrShutdownTimeout
	ErrInvalidConfig   = domain.ErrInvalidConfig
	ErrTextureOpen     = domain.ErrTextureOpen

	// ErrQueueAlreadyExists is returned by Start when the frame channel name
	// is taken on the host.
	ErrQueueAlreadyExists error = domain.ErrQueueAlreadyExists
)
