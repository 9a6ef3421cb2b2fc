package dataprocessing

import (
	"fmt"
	"strings"
)

// LoadError reports a payload that could not be parsed as tabular data.
// It is terminal for the current upload; the previous Dataset, if any,
// is retained by the session store.
type LoadError struct {
	Reason string
	Cause  error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("load failed: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("load failed: %s", e.Reason)
}

func (e *LoadError) Unwrap() error { return e.Cause }

// NewLoadError wraps a parse failure with a user-presentable reason.
func NewLoadError(reason string, cause error) *LoadError {
	return &LoadError{Reason: reason, Cause: cause}
}

// SchemaError reports required columns missing from the uploaded file's
// header row. Aggregation never runs on a table that failed validation.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}
