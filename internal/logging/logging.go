package logging

import (
	"os"
	"strings"
	"time"

	"payhere-integration-demo/internal/config"

	"github.com/rs/zerolog"
)

// New builds a zerolog logger from config. Supported levels are
// trace|debug|info|warn|error, formats are json|console.
func New(cfg config.Log) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if strings.ToLower(cfg.Format) == "console" {
		out := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		logger = zerolog.New(out)
	} else {
		logger = zerolog.New(os.Stdout)
	}

	return logger.Level(level).With().Timestamp().Logger()
}
