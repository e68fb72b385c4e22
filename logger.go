package fluency

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// LogConfig selects the handler built by NewLogger.
type LogConfig struct {
	Level  string
	Format string
	Color  bool
	Output io.Writer
}

// NewLogger builds a slog.Logger. Format "json" and "text" use the standard
// handlers, anything else uses tint. Level "off" discards everything.
func NewLogger(cfg LogConfig) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	level, ok := parseLogLevel(cfg.Level)
	if !ok {
		return slog.New(slog.DiscardHandler)
	}

	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "json":
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	case "text":
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	default:
		handler = tint.NewHandler(out, &tint.Options{
			Level:      level,
			NoColor:    !cfg.Color,
			TimeFormat: time.Kitchen,
		})
	}
	return slog.New(handler)
}

func parseLogLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "off", "none":
		return 0, false
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelWarn, true
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// errAttr renders an error with tint's highlighted error attribute.
func errAttr(err error) slog.Attr {
	return tint.Err(err)
}
