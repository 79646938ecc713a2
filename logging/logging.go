// Package logging provides the server's structured logger. It wraps a
// single zap.SugaredLogger so call sites can log with printf-style
// formatting while the underlying output stays structured (level, caller,
// timestamp) and safe for concurrent use from the scheduler, connection
// goroutines, and the command-line tools.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// L is the process-wide logger. Replaced wholesale by SetLevel/SetJSON
// during startup; individual packages should not build their own.
var L = newDefault()

func newDefault() *zap.SugaredLogger {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(os.Stderr), zapcore.InfoLevel)
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
}

// SetJSON switches the logger to JSON-encoded output at the given level,
// for production deployments where logs are shipped to an aggregator
// instead of read from a terminal.
func SetJSON(level zapcore.Level) {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	core := zapcore.NewCore(zapcore.NewJSONEncoder(cfg), zapcore.AddSync(os.Stderr), level)
	L = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
}

// Printf logs at info level with printf-style formatting.
func Printf(format string, args ...interface{}) { L.Infof(format, args...) }

// Println logs a single info-level line.
func Println(args ...interface{}) { L.Info(args...) }

// Fatalf logs at error level then exits the process, matching log.Fatalf.
func Fatalf(format string, args ...interface{}) { L.Fatalf(format, args...) }

// Sync flushes any buffered log entries. Call before process exit.
func Sync() { _ = L.Sync() }
