// Package common defines shared sentinel errors and typed errors used across
// camfeed layers. Callers should use errors.Is / errors.As to match them.
package common

import (
	"errors"
	"fmt"
)

var (
	// Extraction errors.
	ErrParse = errors.New("parse error")

	// Reconciliation errors.
	ErrValidation   = errors.New("validation error")
	ErrStore        = errors.New("store error")
	ErrStoreTimeout = errors.New("store timeout")
	ErrConstraint   = errors.New("constraint violation")

	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
)

// ValidationError reports a record that cannot be reconciled.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// StoreKind classifies a store failure.
type StoreKind string

const (
	StoreKindFailure    StoreKind = "store"
	StoreKindTimeout    StoreKind = "timeout"
	StoreKindConstraint StoreKind = "constraint"
)

// StoreError wraps a failed store operation. It matches ErrStore and, depending
// on Kind, ErrStoreTimeout or ErrConstraint.
type StoreError struct {
	Op   string
	Kind StoreKind
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() []error {
	errs := []error{ErrStore, e.Err}
	switch e.Kind {
	case StoreKindTimeout:
		errs = append(errs, ErrStoreTimeout)
	case StoreKindConstraint:
		errs = append(errs, ErrConstraint)
	}
	return errs
}
