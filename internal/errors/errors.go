package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// SimError is an error raised outside the simulation core: reading case files,
// writing reports, comparing result directories.
type SimError struct {
	Inner   error
	Message string
}

func New(text string) *SimError {
	return &SimError{Message: text}
}

func WrapError(inner error, messagef string, messageArgs ...interface{}) *SimError {
	return &SimError{
		Inner:   errors.WithStack(inner),
		Message: fmt.Sprintf(messagef, messageArgs...),
	}
}

func (e *SimError) Unwrap() error {
	return e.Inner
}

func (e *SimError) Error() string {
	if e.Inner == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, errors.Cause(e.Inner))
}
