// Package logging provides the structured run logger for faunasim:
// console output during development, a global logger seeded once at
// startup, and field-scoped child loggers for noisy per-day context.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global logger's time format and output writer.
// pretty selects a human-readable console writer (for a terminal); when
// false, raw JSON lines are written to stderr (for piping to a log
// collector).
func Init(pretty bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		return
	}
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// Logger returns the global logger.
func Logger() *zerolog.Logger { return &log.Logger }

// ForRun returns a child logger tagged with this run's instruction file
// and HFT count, attached to every subsequent log line it emits.
func ForRun(instructionFile string, hftCount int) zerolog.Logger {
	return log.With().
		Str("instruction_file", instructionFile).
		Int("hft_count", hftCount).
		Logger()
}

// ForDay returns a child logger tagged with the current simulated date,
// for the per-day log lines emitted while driving world.World.
func ForDay(logger zerolog.Logger, dateString string) zerolog.Logger {
	return logger.With().Str("date", dateString).Logger()
}

// ForAggregationUnit returns a child logger additionally tagged with one
// simulation unit's aggregation-unit identifier.
func ForAggregationUnit(logger zerolog.Logger, aggregationUnit string) zerolog.Logger {
	return logger.With().Str("aggregation_unit", aggregationUnit).Logger()
}
