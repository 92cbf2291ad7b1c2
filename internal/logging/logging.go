package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// thin wrapper so commands can log key/value pairs without importing zap
type Logger struct {
	*zap.SugaredLogger
}

// builds a console logger writing to stderr; verbose enables debug output
func NewLogger(verbose bool) *Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.TimeKey = ""
	cfg.DisableStacktrace = true
	cfg.DisableCaller = !verbose
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	base, err := cfg.Build()
	if err != nil {
		base = zap.NewNop()
	}
	return &Logger{SugaredLogger: base.Sugar()}
}

// discards everything, for tests and library callers
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// returns a child logger with the given fields attached
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(keysAndValues...)}
}
