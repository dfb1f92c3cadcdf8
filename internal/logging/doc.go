// Package logging provides structured logging for nodeboard.
//
// This package wraps a package-level zap logger with convenience functions for
// the logging patterns used throughout the dashboard, the inventory API client
// and the reference backend.
//
// # Log Levels
//
//   - Debug: State machine transitions, ignored events, request details
//   - Info: Startup, listener addresses, device list loads
//   - Warn: Request failures, substituted defaults for unparseable input
//   - Error: Failures that abort a command
//
// # Configuration
//
// Logging is silent unless a level is given explicitly or through the
// NODEBOARD_LOG_LEVEL environment variable:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// The terminal dashboard must not write to stdout while bubbletea owns the
// screen, so it uses InitializeToFile instead.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use once initialized.
package logging
