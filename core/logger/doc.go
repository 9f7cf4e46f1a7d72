// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments
// (development vs production) and is shared by every component of the content
// pipeline.
//
// # Load Correlation
//
// Each content load is assigned a correlation id when it is queued. The
// WithLoadID helper attaches that id to the log entry, ensuring that all logs
// related to one load - across the file I/O, worker and render executors -
// can be correlated.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Format: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("pipeline started")
//
//	// In a loader:
//	l := logger.WithLoadID(log, id)
//	l.Warn("read failed", zap.Error(err))
package logger
