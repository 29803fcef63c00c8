package config

import (
	"errors"
	"fmt"
)

// ErrInvalidValue indicates a setting with the wrong type or an unknown
// value.
var ErrInvalidValue = errors.New("invalid config value")

// FieldError reports which setting was rejected.
type FieldError struct {
	Path  string // dotted setting path, e.g. "storage.active_delay"
	Value any
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s = %v: %v", e.Path, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func invalid(path string, value any, format string, args ...any) error {
	return &FieldError{Path: path, Value: value, Err: fmt.Errorf("%w: "+format, append([]any{ErrInvalidValue}, args...)...)}
}
