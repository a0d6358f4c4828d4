package logutils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Options controls where and how log lines are written.
type Options struct {
	// Level is one of: debug, info, warn, error, fatal.
	Level string
	// File receives JSON log lines. When empty, logs go to Fallback.
	File string
	// Fallback is used when File is empty. Defaults to os.Stderr so that
	// stdout stays reserved for command output and the MCP stdio transport.
	Fallback io.Writer
}

// New returns a logger that writes JSON to the configured destination and a
// closer that releases any opened file.
func New(opts Options) (zerolog.Logger, func(), error) {
	closer := func() {}

	lvl, err := zerolog.ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Logger{}, closer, err
	}

	var writer io.Writer = os.Stderr
	if opts.Fallback != nil {
		writer = opts.Fallback
	}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return zerolog.Logger{}, closer, fmt.Errorf("create logs dir: %w", err)
		}

		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Logger{}, closer, err
		}
		closer = func() { _ = f.Close() }
		writer = f
	}

	l := zerolog.New(writer).
		With().
		Timestamp().
		Logger().
		Level(lvl)

	return l, closer, nil
}
