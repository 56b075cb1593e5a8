package common

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ParseLevel maps a config level name to a zerolog level. Unknown names
// fall back to info.
func ParseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger builds a logger writing to w. format "json" writes one JSON
// object per line, anything else uses the console writer. APP_ENV=production
// forces JSON.
func NewLogger(w io.Writer, level, format string) zerolog.Logger {
	if os.Getenv("APP_ENV") == "production" {
		format = "json"
	}

	var logger zerolog.Logger
	if format == "json" {
		logger = zerolog.New(w)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		})
	}
	return logger.Level(ParseLevel(level)).With().Timestamp().Logger()
}

// SetupLogging configures the global level and the global logger on stderr
// and returns it.
func SetupLogging(level, format string) zerolog.Logger {
	zerolog.SetGlobalLevel(ParseLevel(level))
	log.Logger = NewLogger(os.Stderr, level, format)
	return log.Logger
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM
func SignalContext(parent context.Context, logger zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
