package testhelpers

import (
	"github.com/myrjola/repquiz/internal/logging"
	"io"
	"log/slog"
)

// NewLogger creates a debug level logger writing to logSink, usually [io.Discard]. Timestamps are left out so that
// captured output can be compared.
func NewLogger(logSink io.Writer) *slog.Logger {
	return slog.New(logging.NewContextHandler(slog.NewTextHandler(logSink, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: dropTime,
	})))
}

func dropTime(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}
