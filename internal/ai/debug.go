package ai

import "sync/atomic"

// debugLoggingEnabled gates AI debug logging. Package-level flag so hot
// decision paths skip the slog level check entirely.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging enables or disables debug logging for the AI subsystem.
// Call once during initialization based on the configured log level.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled returns true if debug logging is enabled.
// Use it to guard log calls that build arguments:
//
//	if ai.IsDebugEnabled() {
//	    slog.Debug("decision", "dist", cmd.Distance(a, b))
//	}
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}
