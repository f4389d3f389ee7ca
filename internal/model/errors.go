package model

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is wrapped by every ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrDataUnavailable marks a quote or history fetch that failed or came back empty.
	ErrDataUnavailable = errors.New("market data unavailable")
	// ErrPersistence is wrapped by every PersistenceError.
	ErrPersistence = errors.New("persistence failed")
	// ErrInsufficientData is returned when no holding produced any history.
	ErrInsufficientData = errors.New("insufficient historical data")
)

// ValidationError rejects user input for a holding or watch item.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// PersistenceError reports a store that could not be read or written.
// The mutation that triggered it was not applied.
type PersistenceError struct {
	Op   string // "load" or "save"
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistence, e.Err} }
