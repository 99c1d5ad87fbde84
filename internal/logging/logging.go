// Package logging builds the component-scoped loggers used across planforge.
// The engine itself is pure; loggers live at the planner and CLI boundaries.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a production logger scoped to a component. When verbose is true
// the level drops to debug and output switches to the console encoder.
func New(component string, verbose bool) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar().Named(component), nil
}

// Nop returns a logger that discards everything. Tests and library consumers
// that do not care about logs pass this instead of nil.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
