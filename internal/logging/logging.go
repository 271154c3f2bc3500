package logging

import (
	"io"
	"log/slog"
	"strings"
	"time"
)

// New создает структурированный логгер в формате json или text
func New(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.ToLower(format) == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

// Init создает логгер и устанавливает его как slog.Default
func Init(w io.Writer, level, format string) *slog.Logger {
	logger := New(w, ParseLevel(level), format)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel converts a string ("debug", "info", "warn", "error") to slog.Level.
// Unknown strings default to LevelInfo.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

// --- Логирование стадий конвейера ---

// LogStageStart логирует начало стадии
func LogStageStart(logger *slog.Logger, runID, stage string, attrs ...any) {
	attrs = append(attrs, "run_id", runID, "stage", stage)
	logger.Info("Stage started", attrs...)
}

// LogStageComplete логирует успешное завершение стадии
func LogStageComplete(logger *slog.Logger, runID, stage string, rows int, duration time.Duration, attrs ...any) {
	attrs = append(attrs,
		"run_id", runID,
		"stage", stage,
		"rows", rows,
		"duration_ms", duration.Milliseconds(),
	)
	logger.Info("Stage completed", attrs...)
}

// LogStageFailed логирует ошибку стадии
func LogStageFailed(logger *slog.Logger, runID, stage string, err error, attrs ...any) {
	attrs = append(attrs, "run_id", runID, "stage", stage, "error", err)
	logger.Error("Stage failed", attrs...)
}

// Discard возвращает логгер, который ничего не пишет (для тестов)
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
