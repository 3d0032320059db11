package log

// NoopLogger drops every record. It is the default logger of devices,
// channels and plugins created without one.
type NoopLogger struct{}

var _ Logger = NoopLogger{}

// NewNoopLogger returns a logger that discards everything.
func NewNoopLogger() *NoopLogger { return &NoopLogger{} }

func (NoopLogger) Debug(string, ...Field) {}
func (NoopLogger) Info(string, ...Field)  {}
func (NoopLogger) Warn(string, ...Field)  {}
func (NoopLogger) Error(string, ...Field) {}
