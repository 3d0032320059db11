// Package log provides the logging abstraction used by camsim components.
//
// Components accept a [Logger] and never import a logging library directly.
// A zerolog-backed adapter is provided for the CLI and for embedders, and a
// no-op logger is the default when none is configured.
//
// # Usage
//
//	logger := log.NewZerologAdapter(os.Stderr, zerolog.InfoLevel)
//	dev, err := camsim.New(cfg, camsim.WithLogger(logger.With(log.String("component", "camsim"))))
//
// Or discard everything:
//
//	logger := log.NewNoopLogger()
//
// # Custom Loggers
//
// Implement the Logger interface to integrate with your existing logging
// infrastructure:
//
//	type MyLogger struct { ... }
//
//	func (l *MyLogger) Debug(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Info(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Warn(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Error(msg string, fields ...log.Field) { ... }
package log
