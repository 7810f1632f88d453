package domain

import "fmt"

// ConfigurationError reports a missing or malformed setting. It is fatal:
// a run never starts with one outstanding.
type ConfigurationError struct {
	Field  string
	Reason string
	Err    error
}

// NewConfigurationError builds a ConfigurationError for field.
func NewConfigurationError(field, reason string) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: reason}
}

func (e *ConfigurationError) Error() string {
	msg := "configuration"
	if e.Field != "" {
		msg += " " + e.Field
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
