package observability

import (
	"io"
	"log/slog"
	"strings"

	"github.com/ncecere/gemini_relay/internal/config"
)

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// NewLogger builds the process logger from the log section. Unknown levels
// fall back to info.
func NewLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	level, ok := logLevels[strings.ToLower(strings.TrimSpace(cfg.Level))]
	if !ok {
		level = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "text":
		return slog.New(slog.NewTextHandler(w, handlerOpts))
	default:
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
}
