// Package logger holds the process-wide structured logger.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a no-op until Initialize is called, so packages may log
// unconditionally.
var Logger = zap.NewNop().Sugar()

// Initialize installs a logger writing to stderr at level ("debug", "info",
// "warn" or "error"). With jsonOutput the production JSON encoder is used.
func Initialize(level string, jsonOutput bool) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}

	var l *zap.Logger
	if jsonOutput {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(lvl)
		config.OutputPaths = []string{"stderr"}
		if l, err = config.Build(); err != nil {
			return err
		}
	} else {
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.TimeKey = ""
		encoderConfig.CallerKey = ""
		l = zap.New(zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.Lock(os.Stderr),
			lvl,
		))
	}
	Logger = l.Sugar()
	return nil
}

// Sync flushes buffered entries.
func Sync() {
	_ = Logger.Sync()
}
