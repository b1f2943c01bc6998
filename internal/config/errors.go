package config

import (
	"fmt"
	"strings"
)

// MissingKeysError lists required keys absent from every source
type MissingKeysError struct {
	Keys []string
}

func (e *MissingKeysError) Error() string {
	return fmt.Sprintf("missing required configuration keys: %s", strings.Join(e.Keys, ", "))
}

// InvalidValueError indicates a key whose value cannot be used
type InvalidValueError struct {
	Key    string
	Value  string
	Reason string
	Err    error
}

func (e *InvalidValueError) Error() string {
	msg := fmt.Sprintf("invalid value %q for %s", e.Value, e.Key)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidValueError) Unwrap() error {
	return e.Err
}

// UnsupportedFormatError indicates a config file with an unknown extension
type UnsupportedFormatError struct {
	Path string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported config file format: %s (want .properties, .yaml or .yml)", e.Path)
}
