package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// SlogLogger is a ContainerLogger backed by log/slog
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger creates a logger writing to w. format is "json" or "text";
// level is one of debug, info, warn, error.
func NewSlogLogger(w io.Writer, level, format string, includeCaller bool) *SlogLogger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level), AddSource: includeCaller}
	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return &SlogLogger{logger: slog.New(handler)}
}

// ParseLevel maps a configured level name to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *SlogLogger) Log(level, message string, metadata map[string]interface{}) {
	attrs := make([]slog.Attr, 0, len(metadata))
	for k, v := range metadata {
		attrs = append(attrs, slog.Any(k, v))
	}
	l.logger.LogAttrs(context.Background(), ParseLevel(level), message, attrs...)
}
