package models

import "fmt"

// ValidationError reports malformed or semantically invalid input.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError builds a ValidationError.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports an unknown identifier.
type NotFoundError struct {
	Entity string
	ID     any
}

// NewNotFoundError builds a NotFoundError.
func NewNotFoundError(entity string, id any) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %v", e.Entity, e.ID)
}

// InvalidStatusTransitionError reports an illegal split status change.
type InvalidStatusTransitionError struct {
	SplitID int64
	From    SplitStatus
	To      SplitStatus
}

func (e *InvalidStatusTransitionError) Error() string {
	if e.SplitID == 0 {
		return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
	}
	return fmt.Sprintf("split %d: invalid status transition %s -> %s", e.SplitID, e.From, e.To)
}
