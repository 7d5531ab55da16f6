// Package logging builds the zerolog logger shared by the client.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/meetly-app/meetly/internal/config"
)

// Options selects where log lines go.
type Options struct {
	// Verbose writes human-readable lines to Stderr.
	Verbose bool
	// Stderr overrides os.Stderr (tests).
	Stderr io.Writer
}

// New returns a logger for the given system config. By default the CLI
// discards logs; Verbose adds a console writer and system.log_file adds a
// JSON-lines file. The returned closer releases the log file.
func New(sys config.SystemConfig, opts Options) (zerolog.Logger, io.Closer, error) {
	level := zerolog.InfoLevel
	if sys.LogLevel != "" {
		l, err := zerolog.ParseLevel(sys.LogLevel)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("parse log level: %w", err)
		}
		level = l
	}

	var writers []io.Writer
	var closer io.Closer = nopCloser{}

	if opts.Verbose {
		stderr := opts.Stderr
		if stderr == nil {
			stderr = os.Stderr
		}
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        stderr,
			TimeFormat: time.TimeOnly,
			NoColor:    sys.NoColor,
		})
		if level > zerolog.DebugLevel {
			level = zerolog.DebugLevel
		}
	}

	if sys.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(sys.LogFile), 0o755); err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(sys.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("open log file: %w", err)
		}
		writers = append(writers, f)
		closer = f
	}

	if len(writers) == 0 {
		return zerolog.Nop(), closer, nil
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
