package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"shortr/internal/platform/config"
)

// Init configures the global zerolog logger. Unknown levels fall back to
// info; a log file that cannot be opened falls back to stdout.
func Init(cfg config.LoggingConfig) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	out, err := output(cfg)
	if err != nil {
		log.Error().Err(err).Str("path", cfg.FilePath).Msg("Failed to open log file, logging to stdout")
		out = os.Stdout
	}
	if cfg.Format == "text" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: out != os.Stdout}
	}

	log.Logger = zerolog.New(out).With().Timestamp().Str("service", "shortr").Logger()
}

func output(cfg config.LoggingConfig) (io.Writer, error) {
	if cfg.Output != "file" || cfg.FilePath == "" {
		return os.Stdout, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0664)
}

// New builds the application logger on top of the global zerolog logger.
// Remote shipping is enabled when cfg.Remote.URL is set.
func New(cfg config.LoggingConfig) *AppLogger {
	var sink *RemoteSink
	if cfg.Remote.URL != "" {
		sink = NewRemoteSink(cfg.Remote)
	}
	return NewAppLogger(log.Logger, sink)
}
