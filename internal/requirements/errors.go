package requirements

import (
	"errors"
	"fmt"
)

// ErrConfiguration is matched by every ConfigurationError via errors.Is.
var ErrConfiguration = errors.New("configuration error")

// ConfigurationError reports a requirement key that is missing or malformed.
// It is the only error class allowed to abort a validation run.
type ConfigurationError struct {
	Key    string // dotted requirement path
	Reason string
	Err    error // underlying cause, if any
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	msg := "requirements"
	if e.Key != "" {
		msg += ": " + e.Key
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Is makes every ConfigurationError match ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func configErr(key, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Key: key, Reason: fmt.Sprintf(format, args...)}
}

func wrapConfigErr(key, reason string, err error) *ConfigurationError {
	return &ConfigurationError{Key: key, Reason: reason, Err: err}
}

// IsConfigurationError reports whether err is or wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
