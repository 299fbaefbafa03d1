package validation

import (
	"fmt"
	"strings"
)

// FieldError is one problem with one config key.
type FieldError struct {
	Key     string
	Message string
}

// String renders the error as "[key] message".
func (e FieldError) String() string {
	return fmt.Sprintf("[%s] %s", e.Key, e.Message)
}

// Error carries every problem found in one validation run, ordered by schema
// declaration and then by check declaration within a field.
type Error struct {
	Errors []FieldError
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Errors) == 1 {
		return "config validation failed: " + e.Errors[0].String()
	}
	return fmt.Sprintf("config validation failed with %d errors:\n  - %s", len(e.Errors), strings.Join(e.Messages(), "\n  - "))
}

// Messages returns the errors rendered as "[key] message". The list, not the
// joined Error string, is the machine-readable result.
func (e *Error) Messages() []string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.String()
	}
	return msgs
}

// ForKey returns the errors recorded for key.
func (e *Error) ForKey(key string) []FieldError {
	var result []FieldError
	for _, fe := range e.Errors {
		if fe.Key == key {
			result = append(result, fe)
		}
	}
	return result
}

// HasErrors returns true if there are any errors.
func (e *Error) HasErrors() bool {
	return len(e.Errors) > 0
}

// Add records an error for key.
func (e *Error) Add(key, format string, args ...any) {
	e.Errors = append(e.Errors, FieldError{Key: key, Message: fmt.Sprintf(format, args...)})
}

// AsError returns nil if no errors were recorded, otherwise e.
func (e *Error) AsError() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}
