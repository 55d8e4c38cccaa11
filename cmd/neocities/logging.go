package main

import (
	"io"
	"log"
	"log/slog"
	"strings"

	"github.com/lmittmann/tint"
)

// setupLogging installs a tint handler on w. The CLI stays quiet below
// warn unless asked; verbose lowers the level to debug.
func setupLogging(w io.Writer, levelStr string, verbose bool) {
	if levelStr == "" {
		levelStr = "warn"
		if verbose {
			levelStr = "debug"
		}
	}

	h := tint.NewHandler(w, &tint.Options{
		Level:      parseLevel(levelStr),
		TimeFormat: "15:04:05.000",
	})

	slog.SetDefault(slog.New(h))

	log.SetFlags(0)
	log.SetOutput(
		slog.NewLogLogger(
			slog.Default().Handler(),
			slog.LevelInfo,
		).Writer(),
	)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
