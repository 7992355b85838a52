// Package logging builds the process-wide zap logger.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/waygalih/suratdesa/internal/gelf"
)

const serviceName = "suratdesa"

// New returns a production JSON logger at the given level. When gelfAddr is
// set, entries are also shipped to Graylog over UDP.
func New(level, gelfAddr string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("logging: parse level %q: %w", level, err)
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.EncoderConfig.TimeKey = "ts"
	config.InitialFields = map[string]any{"service": serviceName}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build: %w", err)
	}
	if gelfAddr == "" {
		return logger, nil
	}

	gw, err := gelf.New(gelfAddr, serviceName)
	if err != nil {
		logger.Warn("GELF init failed, logging to stderr only", zap.String("addr", gelfAddr), zap.Error(err))
		return logger, nil
	}
	gelfCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(config.EncoderConfig),
		zapcore.AddSync(gw),
		config.Level,
	)
	logger = logger.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, gelfCore)
	}))
	logger.Info("GELF logging enabled", zap.String("addr", gelfAddr))
	return logger, nil
}
