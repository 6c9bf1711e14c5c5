// Package logging provides structured logging for surfpub using zerolog.
// Console output is used when stderr is a terminal and JSON everywhere else,
// so CI logs of a publish run stay machine-readable.
//
// Example usage:
//
//	log := logging.Default()
//	log.Info().Str("space", "SC").Msg("Publishing reports")
//
//	ctx := logging.WithLogger(context.Background(), log)
//	ctx = logging.WithFile(ctx, "./eue-alpha-map.insert")
//	logging.FromContext(ctx).Debug().Msg("Reconciling")
package logging

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// defaultLogger is used when no logger travels in the context.
var defaultLogger = NewLoggerFromConfig(&Config{
	Level:   os.Getenv("LOG_LEVEL"),
	Format:  os.Getenv("LOG_FORMAT"),
	NoColor: os.Getenv("NO_COLOR") != "",
})

// Default returns the default global logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault sets the default global logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
}

// Warn starts a new warning level event on the default logger.
func Warn() *zerolog.Event {
	return defaultLogger.Warn()
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
