package persist

import (
	"errors"
	"fmt"
)

// ErrQuotaExceeded indicates a write would grow the store past its quota.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// OperationError records which key-value operation failed.
type OperationError struct {
	Op  string // "get", "set", "delete"
	Key string
	Err error
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Key != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
