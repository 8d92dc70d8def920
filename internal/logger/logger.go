package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Rogue-Bear-Innovations/bookmarker-catalog/internal/config"
)

// New builds a console logger for development and a JSON logger otherwise.
func New(level, env string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == config.EnvProduction {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if lvl, ok := parseLevel(level); ok {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	return cfg.Build(zap.AddStacktrace(zapcore.FatalLevel))
}

// NewFromConfig is the fx constructor; it hands out both flavours.
func NewFromConfig(cfg *config.Config) (*zap.Logger, *zap.SugaredLogger, error) {
	l, err := New(cfg.LogLevel, cfg.Env)
	if err != nil {
		return nil, nil, err
	}
	return l, l.Sugar(), nil
}

func parseLevel(lvl string) (zapcore.Level, bool) {
	switch lvl {
	case "debug":
		return zapcore.DebugLevel, true
	case "info":
		return zapcore.InfoLevel, true
	case "warn":
		return zapcore.WarnLevel, true
	case "error":
		return zapcore.ErrorLevel, true
	default:
		return zapcore.InfoLevel, false
	}
}
