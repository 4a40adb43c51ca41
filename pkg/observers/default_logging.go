package observers

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// NewDefaultLogger builds the process logger. format "json" writes slog
// JSON records; anything else writes colorised text through tint.
func NewDefaultLogger(w io.Writer, level slog.Level, format string, noColor bool) *slog.Logger {
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    noColor,
	}))
}

// NewDefaultLoggingObserver creates a logging observer with default settings (LogInfo level)
func NewDefaultLoggingObserver(logger *slog.Logger) *LoggingObserver {
	return NewLoggingObserver(logger, LogInfo, "signalgrid")
}
