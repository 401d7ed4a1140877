package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// The global Logger. Comes configured with some sensible defaults for e.g. unit
// tests, but applications should generally configure their own logging config
// via Configure or ReplaceStdLogger.
var stdLogger = &Logger{underlying: createDefaultLogger(zapcore.InfoLevel)}

// Configure replaces the global logger with a default console logger at Info
// level, or Debug level if verbose. Called once at app startup, before any
// command runs.
func Configure(verbose bool) {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	ReplaceStdLogger(&Logger{underlying: createDefaultLogger(level)})
}

// ReplaceStdLogger replaces the global logger. This should be called once at app startup!
func ReplaceStdLogger(l *Logger) {
	stdLogger = l
}

// StdLogger returns the default logger.
func StdLogger() *Logger {
	return stdLogger
}

// Debugf logs a formatted message at level Debug on the standard logger.
func Debugf(format string, args ...any) {
	stdLogger.Debugf(format, args...)
}

// Default logging options.
func createDefaultLogger(level zapcore.Level) *zap.SugaredLogger {
	pe := zap.NewProductionEncoderConfig()
	pe.EncodeTime = zapcore.ISO8601TimeEncoder
	pe.ConsoleSeparator = " "
	pe.EncodeLevel = zapcore.CapitalLevelEncoder
	consoleEncoder := zapcore.NewConsoleEncoder(pe)
	core := zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), level)
	return zap.
		New(core, zap.AddCaller()).
		WithOptions(zap.AddCallerSkip(2)).
		Sugar()
}
