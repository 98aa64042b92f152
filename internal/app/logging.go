package app

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ganot/motion-collector/internal/config"
)

// NewLogger builds the process logger. Console output goes to stderr when
// stdout carries protocol traffic. When cfg.Path is set, logs are also
// written to a size-rotated file. The returned closer releases that file.
func NewLogger(cfg config.LogConfig, useStderr bool) (*slog.Logger, io.Closer, error) {
	var console io.Writer = os.Stdout
	if useStderr {
		console = os.Stderr
	}

	out := console
	var closer io.Closer = nopCloser{}
	if cfg.Path != "" {
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, err
			}
		}
		file := &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		}
		out = io.MultiWriter(console, file)
		closer = file
	}

	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: ParseLogLevel(cfg.Level),
	}))
	return logger, closer, nil
}

// ParseLogLevel maps a config level name to a slog level. Unknown names mean info.
func ParseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
