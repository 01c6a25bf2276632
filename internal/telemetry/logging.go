package telemetry

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the process logger. format is "json" or "console" and
// applies to stderr; an unknown level falls back to info. When file is set,
// JSON lines are also written to a size-rotated file, and the returned
// closer releases it.
func NewLogger(level, format, file string) (zerolog.Logger, io.Closer) {
	var out io.Writer = os.Stderr
	if format == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	var closer io.Closer = nopCloser{}
	if file != "" {
		rot := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    100, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		}
		out = zerolog.MultiLevelWriter(out, rot)
		closer = rot
	}
	return newLogger(out, level), closer
}

func newLogger(out io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Str("service", "heartcheck").Logger()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
