// Package logger builds the zap logger shared by every service.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mrlokans/reading-tracker/internal/config"
)

// New creates a zap logger from the Log section of the configuration.
// Format "console" gives colored human output, anything else is JSON.
func New(cfg config.Log) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.Level == "debug" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}

	if cfg.Format == "console" {
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zc.DisableStacktrace = true
	} else {
		zc.Encoding = "json"
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	zc.EncoderConfig.LevelKey = "level"
	zc.EncoderConfig.TimeKey = "time"
	zc.EncoderConfig.MessageKey = "message"

	return zc.Build()
}
