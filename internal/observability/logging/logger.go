// Package logging builds the process-wide structured logger shared by
// the api and worker binaries.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

var levelNames = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// NewJSONLogger writes JSON records to stdout, every record carrying a
// fixed service attribute so api and worker logs stay separable in a
// shared sink.
func NewJSONLogger(service, level string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	return slog.New(handler).With("service", service)
}

// ParseLevel maps a LOG_LEVEL value to a slog level. Unknown names
// fall back to info rather than failing startup.
func ParseLevel(level string) slog.Level {
	if parsed, ok := levelNames[strings.ToLower(strings.TrimSpace(level))]; ok {
		return parsed
	}
	return slog.LevelInfo
}
