package app

import (
	"time"

	"github.com/bft-labs/camsim/internal/ports"
)

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a clock backed by the process monotonic clock.
func SystemClock() ports.Clock { return systemClock{} }
