package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level defines the log severity levels.
type Level int32

// Enumeration of log levels from least to most severe.
const (
	Debug Level = iota
	Info
	Warn
	Error
	Fatal
)

// Logger is a leveled logger. Messages are encoded by zap and written to the
// configured writer, one line per message.
type Logger struct {
	// Logging options that determine behavior such as output destination and log level.
	options options

	// The underlying zap logger.
	base *zap.SugaredLogger
}

// String provides a string representation of the logging level.
func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	case Fatal:
		return "FATAL"
	default:
		panic("invalid log level")
	}
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case Debug:
		return zapcore.DebugLevel
	case Info:
		return zapcore.InfoLevel
	case Warn:
		return zapcore.WarnLevel
	case Error:
		return zapcore.ErrorLevel
	default:
		return zapcore.FatalLevel
	}
}

// NewLogger creates a new logger instance with the provided options.
// If no options are provided, default values are used.
func NewLogger(opts ...Option) (*Logger, error) {
	var options options
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return nil, err
		}
	}

	if options.writer == nil {
		options.writer = defaultWriter
	}
	if options.prefix == "" {
		options.prefix = defaultPrefix
	}
	if !options.levelSet {
		options.level = Info
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if !options.timestamps {
		encoderConfig.TimeKey = ""
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(options.writer),
		options.level.zapLevel(),
	)

	return &Logger{
		options: options,
		base:    zap.New(core).Named(options.prefix).Sugar(),
	}, nil
}

// Nop returns a logger that discards every message.
func Nop() *Logger {
	return &Logger{options: options{level: Fatal, levelSet: true}, base: zap.NewNop().Sugar()}
}

// With returns a child logger that attaches the given key-value pairs to every message.
func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{options: l.options, base: l.base.With(keysAndValues...)}
}

// Level returns the minimum level the logger writes.
func (l *Logger) Level() Level {
	return l.options.level
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	return l.base.Sync()
}

// Debug logs a debug message with the given arguments.
func (l *Logger) Debug(args ...any) {
	l.base.Debug(args...)
}

// Debugf logs a formatted debug message.
func (l *Logger) Debugf(format string, args ...any) {
	l.base.Debugf(format, args...)
}

// Info logs an informational message.
func (l *Logger) Info(args ...any) {
	l.base.Info(args...)
}

// Infof logs a formatted informational message.
func (l *Logger) Infof(format string, args ...any) {
	l.base.Infof(format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(args ...any) {
	l.base.Warn(args...)
}

// Warnf logs a formatted warning message.
func (l *Logger) Warnf(format string, args ...any) {
	l.base.Warnf(format, args...)
}

// Error logs an error message.
func (l *Logger) Error(args ...any) {
	l.base.Error(args...)
}

// Errorf logs a formatted error message.
func (l *Logger) Errorf(format string, args ...any) {
	l.base.Errorf(format, args...)
}

// Fatal logs a fatal error message and then terminates the program.
func (l *Logger) Fatal(args ...any) {
	l.base.Fatal(args...)
}

// Fatalf logs a formatted fatal error message and then terminates the program.
func (l *Logger) Fatalf(format string, args ...any) {
	l.base.Fatal(fmt.Sprintf(format, args...))
}
