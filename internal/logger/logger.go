// Package logger provides the structured logger shared by every pipeline stage.
package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a sugared zap logger with key/value helpers.
type Logger struct {
	internal *zap.SugaredLogger
	level    zap.AtomicLevel
}

// New creates a logger writing to stderr. format is "console" or "json".
func New(level, format string) (*Logger, error) {
	lvl := zap.NewAtomicLevelAt(parseLevel(level))

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	cfg.Sampling = nil
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if strings.ToLower(format) != "json" {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{internal: z.Sugar(), level: lvl}, nil
}

// Nop returns a logger that discards everything. Used by tests.
func Nop() *Logger {
	return &Logger{internal: zap.NewNop().Sugar(), level: zap.NewAtomicLevel()}
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// SetLevel changes the level at runtime.
func (l *Logger) SetLevel(level string) {
	l.level.SetLevel(parseLevel(level))
}

func (l *Logger) Debug(msg string, args ...any) {
	l.internal.Debugw(msg, args...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.internal.Infow(msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.internal.Warnw(msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.internal.Errorw(msg, args...)
}

// With creates a child logger carrying the given key/value pairs.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{internal: l.internal.With(args...), level: l.level}
}

// Sync flushes buffered entries.
func (l *Logger) Sync() {
	_ = l.internal.Sync()
}
