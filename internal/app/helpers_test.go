package app

import (
	"sync"
	"time"

	"github.com/bft-labs/camsim/pkg/log"
)

// mockLogger implements log.Logger for testing and counts warnings.
type mockLogger struct {
	mu    sync.Mutex
	warns []string
}

func (*mockLogger) Debug(msg string, fields ...log.Field) {}
func (*mockLogger) Info(msg string, fields ...log.Field)  {}
func (*mockLogger) Error(msg string, fields ...log.Field) {}

func (m *mockLogger) Warn(msg string, fields ...log.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warns = append(m.warns, msg)
}

func (m *mockLogger) Warnings() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.warns...)
}

// manualClock is a clock that only moves when told to.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
