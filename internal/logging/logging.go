// Package logging wires up the logr façade over a zap backend:
// zap.Options-style fields drive the flag-configurable encoder/level/
// development switches, and the resulting *zap.Logger is adapted
// straight to logr via zapr rather than installed as a global sink.
package logging

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options mirrors the handful of zap.Options fields a bootstrap main
// typically exposes as CLI flags.
type Options struct {
	Development bool
	Level       zapcore.Level
}

// New builds a logr.Logger backed by zap according to opts.
func New(opts Options) logr.Logger {
	var cfg zap.Config
	if opts.Development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(opts.Level)

	zl, err := cfg.Build()
	if err != nil {
		return logr.Discard()
	}
	return zapr.NewLogger(zl)
}
