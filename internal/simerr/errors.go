// Package simerr defines the error kinds returned by the simulation core.
// Every error is scoped to the action that triggered it; none is fatal.
package simerr

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError collects every problem found with a request before any
// mutation is attempted.
type ValidationError struct {
	Problems []string
}

func (ve *ValidationError) Error() string {
	return "validation failed: " + strings.Join(ve.Problems, "; ")
}

// Add appends a formatted problem.
func (ve *ValidationError) Add(format string, args ...any) {
	ve.Problems = append(ve.Problems, fmt.Sprintf(format, args...))
}

// Err returns ve when it holds problems and nil otherwise.
func (ve *ValidationError) Err() error {
	if ve == nil || len(ve.Problems) == 0 {
		return nil
	}
	return ve
}

// NotFoundError reports an unknown resource, location, agent or session.
type NotFoundError struct {
	Entity string
	ID     any
}

func (nfe *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", nfe.Entity, nfe.ID)
}

// StateConflictError reports a transition requested from the wrong state.
type StateConflictError struct {
	Entity string
	ID     any
	State  string
	Reason string
}

func (sce *StateConflictError) Error() string {
	return fmt.Sprintf("%s %v is %s: %s", sce.Entity, sce.ID, sce.State, sce.Reason)
}

// PersistenceError wraps a storage failure. The surrounding transaction is
// always rolled back when one is returned.
type PersistenceError struct {
	Operation string
	Err       error
}

func (pe *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error during %s: %v", pe.Operation, pe.Err)
}

func (pe *PersistenceError) Unwrap() error {
	return pe.Err
}

// Persistence wraps err as a PersistenceError unless it already carries a
// domain error kind.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsValidation(err) || IsNotFound(err) || IsStateConflict(err) || IsPersistence(err) {
		return err
	}
	return &PersistenceError{Operation: op, Err: err}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

func IsStateConflict(err error) bool {
	var sce *StateConflictError
	return errors.As(err, &sce)
}

func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
