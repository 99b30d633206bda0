package ai

import (
	"log/slog"
	"sync/atomic"
)

// tickDebug gates per-tick debug logs. Checking the handler level on every
// tick of every controller is measurable at high tick rates, so the host sets
// this once from the configured log level.
var tickDebug atomic.Bool

// EnableDebugLogging turns per-tick debug logs on or off.
// Call it from main after the log level is known.
func EnableDebugLogging(enabled bool) {
	tickDebug.Store(enabled)
}

// IsDebugEnabled reports whether per-tick debug logs are on.
func IsDebugEnabled() bool {
	return tickDebug.Load()
}

// debugTick logs msg at debug level only when per-tick logs are on.
func debugTick(msg string, args ...any) {
	if tickDebug.Load() {
		slog.Debug(msg, args...)
	}
}
