package sim

import (
	"errors"
	"fmt"

	"github.com/larryuc/t2-iic2523/kv"
	"github.com/larryuc/t2-iic2523/logging"
)

type options struct {
	// The logger handed to the engines.
	logger *logging.Logger

	// Creates the store the engine drives. Defaults depend on the protocol.
	factory kv.Factory
}

// Option is a function that updates the options associated with a Simulator.
type Option func(options *options) error

// WithLogger sets the logger used by the simulator and its engines.
func WithLogger(logger *logging.Logger) Option {
	return func(options *options) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		options.logger = logger
		return nil
	}
}

// WithStore sets the factory of the store driven by the engine. This is
// useful to run a protocol against a store policy other than its default.
func WithStore(factory kv.Factory) Option {
	return func(options *options) error {
		if factory == nil {
			return errors.New("store factory must not be nil")
		}
		options.factory = factory
		return nil
	}
}

// WithStorePolicy selects one of the built-in store policies.
func WithStorePolicy(policy kv.Policy) Option {
	return func(options *options) error {
		factory := kv.FactoryFor(policy)
		if factory == nil {
			return fmt.Errorf("unknown store policy %q", policy)
		}
		options.factory = factory
		return nil
	}
}
