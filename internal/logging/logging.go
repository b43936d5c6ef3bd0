// Package logging builds the zap loggers injected into every component.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a console logger. Verbosity counts -v flags: 0 warns and above,
// 1 adds info, 2 and up adds debug. A non-empty manual level wins over
// verbosity.
func New(verbosity int, manualLevel string) (*zap.Logger, error) {
	level := zapcore.WarnLevel
	switch {
	case verbosity == 1:
		level = zapcore.InfoLevel
	case verbosity >= 2:
		level = zapcore.DebugLevel
	}
	if manualLevel != "" {
		parsed, err := zapcore.ParseLevel(manualLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", manualLevel, err)
		}
		level = parsed
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}
