// Package obs provides the structured logger and metrics used across the
// viewer pipeline. Both are per-context instances injected explicitly;
// nothing here registers globally.
package obs

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// NopLogger returns a logger that discards everything. Used by tests and
// by callers that have not wired an output yet.
func NopLogger() zerolog.Logger { return zerolog.Nop() }

// NewLogger creates the structured logger for one viewer context.
func NewLogger(output io.Writer) zerolog.Logger {
	if output == nil {
		return zerolog.Nop()
	}
	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(output).With().
		Timestamp().
		Str("component", "dicomstack").
		Logger()
}
