package paxos

import (
	"errors"

	"github.com/larryuc/t2-iic2523/logging"
)

type options struct {
	// The logger used to report rounds, learned values and ignored events.
	logger *logging.Logger
}

// Option is a function that updates the options associated with an Engine.
type Option func(options *options) error

// WithLogger sets the logger used by the engine.
func WithLogger(logger *logging.Logger) Option {
	return func(options *options) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		options.logger = logger
		return nil
	}
}
