// Package logging configures slog-based structured logging with standardized
// field names and context-aware attribute propagation.
package logging
