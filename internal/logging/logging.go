// Package logging configures the global zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup sets the global level and output. An explicit level wins; otherwise
// production builds log at info and everything else at debug.
func Setup(level string, production bool) error {
	return setup(os.Stderr, level, production)
}

func setup(w io.Writer, level string, production bool) error {
	lvl, err := resolveLevel(level, production)
	if err != nil {
		return err
	}

	zerolog.SetGlobalLevel(lvl)

	if production {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
		return nil
	}

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		With().Timestamp().Caller().Logger()

	return nil
}

func resolveLevel(level string, production bool) (zerolog.Level, error) {
	if level == "" {
		if production {
			return zerolog.InfoLevel, nil
		}
		return zerolog.DebugLevel, nil
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	return lvl, nil
}
