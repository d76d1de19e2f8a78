package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrTaskAlreadyCompleted = errors.New("task already completed")
	ErrInsufficientFunds    = errors.New("insufficient points")
	ErrCatalogExhausted     = errors.New("catalog exhausted")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports task input that cannot be stored.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Field + " " + f.Message
	}
	return "invalid task: " + strings.Join(msgs, ", ")
}

type InsufficientFundsError struct {
	Balance int
	Cost    int
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient points: balance %d, roll costs %d", e.Balance, e.Cost)
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// StoreError wraps a record store failure. Nothing the failed operation
// wrote has been committed.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// storeError wraps err as a StoreError unless it is already a domain error.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}

	var (
		se *StoreError
		ve *ValidationError
	)
	switch {
	case errors.As(err, &se), errors.As(err, &ve),
		errors.Is(err, ErrTaskNotFound),
		errors.Is(err, ErrTaskAlreadyCompleted),
		errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrCatalogExhausted):
		return err
	}
	return &StoreError{Op: op, Err: err}
}
