package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the process logger. Logs go to stderr in console format, or
// to a file in JSON when path is set. Unknown levels are an error rather
// than a silent default.
func New(level, path string) (zerolog.Logger, func(), error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("bad log level %q: %w", level, err)
	}

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	cleanup := func() {}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		cleanup = func() { _ = f.Close() }
	}

	logger := zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	return logger, cleanup, nil
}

// Nop is a silent logger for tests and tools that do not care.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
