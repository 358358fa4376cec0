// Package logging builds the zap loggers used across nova.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures the logger.
type Options struct {
	// Level is a zap level name such as "debug" or "info". Empty means info.
	Level string
	// File receives JSON log lines. Its directory is created if needed.
	File string
	// Console also writes to stderr.
	Console bool
}

// DefaultFile returns logs/nova.log under dataDir.
func DefaultFile(dataDir string) string {
	return filepath.Join(dataDir, "logs", "nova.log")
}

// New builds a production JSON logger. With neither a file nor the
// console selected it returns a no-op logger.
func New(opts Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		l, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		level = l
	}

	var outputs []string
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		outputs = append(outputs, opts.File)
	}
	if opts.Console {
		outputs = append(outputs, "stderr")
	}
	if len(outputs) == 0 {
		return Nop(), nil
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.OutputPaths = outputs
	config.ErrorOutputPaths = outputs
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Sampling = nil

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.With(zap.Int("pid", os.Getpid())), nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger {
	return zap.NewNop()
}
