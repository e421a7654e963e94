package config

import "fmt"

// ConfigurationError reports a missing or invalid setting. It is fatal at startup.
type ConfigurationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Field, e.Reason, e.Err)
	}
	return e.Field + " " + e.Reason
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func invalid(field, reason string) error {
	return &ConfigurationError{Field: field, Reason: reason}
}

func invalidErr(field, reason string, err error) error {
	return &ConfigurationError{Field: field, Reason: reason, Err: err}
}
