// Package logging builds the process wide zap logger.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Modes accepted by InitLogger.
const (
	ModeDebug   = "debug"
	ModeRelease = "release"
	ModeOff     = "off"
)

var Logger = zap.NewNop()

// InitLogger replaces Logger. "release" writes JSON at info level, "off"
// discards everything and any other mode uses the colourised development
// encoder.
func InitLogger(mode string) error {
	if mode == ModeOff {
		Logger = zap.NewNop()
		return nil
	}

	var config zap.Config

	if mode == ModeRelease {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	logger, err := config.Build()
	if err != nil {
		return err
	}

	Logger = logger
	return nil
}

// Named returns a child of Logger.
func Named(name string) *zap.Logger {
	return Logger.Named(name)
}

func Sync() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}
