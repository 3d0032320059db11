package log

import "time"

// Logger is the structured logger used across camsim.
//
// Frame and present loops log per-tick failures at Warn and per-frame
// progress at Debug, so implementations should make disabled levels cheap.
// Lifecycle transitions are logged at Info and setup failures at Error.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field is one key/value pair attached to a log record.
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field                 { return Field{key, value} }
func Int(key string, value int) Field                { return Field{key, value} }
func Int64(key string, value int64) Field            { return Field{key, value} }
func Uint32(key string, value uint32) Field          { return Field{key, value} }
func Uint64(key string, value uint64) Field          { return Field{key, value} }
func Float64(key string, value float64) Field        { return Field{key, value} }
func Bool(key string, value bool) Field              { return Field{key, value} }
func Duration(key string, value time.Duration) Field { return Field{key, value} }
func Any(key string, value any) Field                { return Field{key, value} }

// Handle creates a field for a channel, block or texture handle.
// Handles are logged in hex to match host tooling.
func Handle(key string, value uint64) Field {
	return Field{Key: key, Value: handleValue(value)}
}

type handleValue uint64

// Err attaches err under the "error" key.
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}
