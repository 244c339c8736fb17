// Package logger builds the process-wide zerolog logger from configuration.
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/mpetrov/screencast/internal/config"
)

// New returns the root logger. Development environments get console output;
// everything else logs JSON lines to stdout.
func New(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var log zerolog.Logger
	if cfg.IsDevelopment() {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		log = zerolog.New(os.Stdout)
	}

	return log.Level(level).With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Logger()
}
