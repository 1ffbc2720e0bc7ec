package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelError
	LogLevelWarning
	LogLevelInfo
	LogLevelDebug
)

type Logger struct {
	base  *zap.Logger
	sugar *zap.SugaredLogger
	level LogLevel
	tag   string
}

// NewLogger wraps base. A nil base discards everything.
func NewLogger(base *zap.Logger, level LogLevel) *Logger {
	if base == nil {
		base = zap.NewNop()
	}
	return &Logger{
		base:  base,
		sugar: base.Sugar(),
		level: level,
		tag:   "",
	}
}

// NewProduction builds the service logger. Under systemd the journal already
// timestamps lines, so the encoder skips the time field.
func NewProduction(level LogLevel) *Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if os.Getenv("INVOCATION_ID") != "" {
		encCfg.TimeKey = ""
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stdout),
		zapLevel(level),
	)
	return NewLogger(zap.New(core), level)
}

func zapLevel(level LogLevel) zapcore.Level {
	switch level {
	case LogLevelDebug:
		return zapcore.DebugLevel
	case LogLevelInfo:
		return zapcore.InfoLevel
	case LogLevelWarning:
		return zapcore.WarnLevel
	case LogLevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.FatalLevel
	}
}

// WithTag creates a new logger with a tag prefix
func (l *Logger) WithTag(tag string) *Logger {
	return &Logger{
		base:  l.base,
		sugar: l.base.Named(tag).Sugar(),
		level: l.level,
		tag:   tag,
	}
}

func (l *Logger) Debugf(format string, v ...interface{}) {
	if l.level >= LogLevelDebug {
		l.sugar.Debugf(format, v...)
	}
}

func (l *Logger) Infof(format string, v ...interface{}) {
	if l.level >= LogLevelInfo {
		l.sugar.Infof(format, v...)
	}
}

// Printf is an alias for Infof for compatibility
func (l *Logger) Printf(format string, v ...interface{}) {
	l.Infof(format, v...)
}

func (l *Logger) Warnf(format string, v ...interface{}) {
	if l.level >= LogLevelWarning {
		l.sugar.Warnf(format, v...)
	}
}

func (l *Logger) Errorf(format string, v ...interface{}) {
	if l.level >= LogLevelError {
		l.sugar.Errorf(format, v...)
	}
}

func (l *Logger) Fatalf(format string, v ...interface{}) {
	l.sugar.Fatalf(format, v...)
}

// Sync flushes buffered output.
func (l *Logger) Sync() error {
	return l.base.Sync()
}
