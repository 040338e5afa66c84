// Package logging sets up the process-wide structured logger: slog with
// a rotating file handler alongside stdout.
package logging

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls the rotating log file. An empty FilePath means stdout
// only.
type Config struct {
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Level      slog.Level
}

// New builds a slog.Logger writing JSON records to stdout and, when
// cfg.FilePath is set, to a lumberjack-rotated file alongside it.
func New(cfg Config) *slog.Logger {
	writers := []io.Writer{os.Stdout}
	if cfg.FilePath != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    firstNonZero(cfg.MaxSizeMB, 100),
			MaxBackups: firstNonZero(cfg.MaxBackups, 5),
			MaxAge:     firstNonZero(cfg.MaxAgeDays, 28),
			Compress:   true,
		})
	}

	handler := slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level: cfg.Level,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func firstNonZero(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}
