package ports

import "time"

// Clock provides the current time. Implementations must return values
// carrying a monotonic reading so that Sub is immune to wall clock changes.
type Clock interface {
	Now() time.Time
}
