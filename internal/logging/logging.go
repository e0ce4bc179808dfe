// Package logging builds the application zap logger.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a zap logger for the given style and level. Styles:
// "terminal" (development console output), "json" (production
// encoding), "noop". Empty values default to terminal at info;
// verbose forces debug level regardless of the configured level.
func New(style, level string, verbose bool) (*zap.Logger, error) {
	logLevel := zapcore.InfoLevel
	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		logLevel = parsed
	}
	if verbose {
		logLevel = zapcore.DebugLevel
	}

	switch style {
	case "noop":
		return zap.NewNop(), nil
	case "json":
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(logLevel)
		return cfg.Build(zap.AddStacktrace(zap.ErrorLevel))
	case "terminal", "":
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(logLevel)
		return cfg.Build(zap.AddStacktrace(zap.ErrorLevel))
	default:
		return nil, fmt.Errorf("invalid logging style %q: must be one of terminal, json, noop", style)
	}
}
