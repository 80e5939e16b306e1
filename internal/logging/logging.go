// Package logging sets up the process-wide structured logger, the way
// the teacher's CLI bootstrap builds a JSON slog handler before
// running any command.
package logging

import (
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Init configures slog.Default to write rotated JSON logs to logFile
// at the given level, returning the writer so callers can flush it on
// shutdown.
func Init(logFile, level string) (*lumberjack.Logger, error) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	if logFile == "" {
		logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
		slog.SetDefault(logger)
		return nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return nil, err
	}

	rotator := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		MaxAge:     28, // days
		Compress:   true,
	}

	logger := slog.New(slog.NewJSONHandler(rotator, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	slog.Info("slog initialized", "file", logFile, "level", level)
	return rotator, nil
}

// Component returns a child logger tagged with a subsystem name, so
// log lines from compose/terminal/imagecheck/events/auth are
// filterable without each caller repeating the attribute.
func Component(name string) *slog.Logger {
	return slog.Default().With("component", name)
}
