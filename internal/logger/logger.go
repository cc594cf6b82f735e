// Package logger builds the zerolog logger shared by the server.
// Handlers receive it through their constructor; tests use Nop.
package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// New constructs the application logger. In the "dev" environment it
// writes human-readable console output; everywhere else it emits JSON
// to stdout.
func New(env string) zerolog.Logger {
	var logger zerolog.Logger
	if env == "dev" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	return logger.With().Timestamp().Str("service", "money-for-rabbit").Logger()
}

// Nop returns a logger that discards everything. For tests.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
