package logging

import (
	"os"

	"github.com/rs/zerolog"
)

// New creates the process-wide structured logger. Validation failures and
// other diagnostics are logged here and never echoed into HTTP responses.
func New(level string) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", "lti-tool").
		Logger()

	lv, err := zerolog.ParseLevel(level)
	if err != nil {
		lv = zerolog.InfoLevel
	}
	return logger.Level(lv)
}
