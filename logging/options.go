package logging

import (
	"errors"
	"io"
	"os"
)

var (
	defaultWriter io.Writer = os.Stderr
	defaultPrefix string    = "sim"
)

type options struct {
	// The destination of log messages.
	writer io.Writer

	// The logger name written before any message.
	prefix string

	// Whether a timestamp is written with each message.
	timestamps bool

	// The level of the logger: debug, info, warn, error, fatal.
	level Level

	// Indicates whether the log level was set.
	levelSet bool
}

type Option func(options *options) error

// WithWriter sets the writer that will be used by the logger.
func WithWriter(w io.Writer) Option {
	return func(options *options) error {
		if w == nil {
			return errors.New("writer must not be nil")
		}
		options.writer = w
		return nil
	}
}

// WithPrefix sets the name written before each message.
func WithPrefix(prefix string) Option {
	return func(options *options) error {
		options.prefix = prefix
		return nil
	}
}

// WithTimestamps enables or disables timestamps on each message.
func WithTimestamps(enabled bool) Option {
	return func(options *options) error {
		options.timestamps = enabled
		return nil
	}
}

// WithLevel sets the level of the logger.
func WithLevel(level Level) Option {
	return func(options *options) error {
		if level < Debug || level > Fatal {
			return errors.New("invalid log level")
		}
		options.level = level
		options.levelSet = true
		return nil
	}
}
