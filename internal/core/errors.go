package core

import "fmt"

// ErrInvalidArgument indicates invalid input or configuration.
type ErrInvalidArgument struct {
	Field   string
	Message string
}

func (e *ErrInvalidArgument) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid argument for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid argument: %s", e.Message)
}

func NewInvalidArgumentError(field, message string) error {
	return &ErrInvalidArgument{Field: field, Message: message}
}

// ErrPrecondition indicates that the inputs of a triplet violate a
// structural requirement checked before any computation starts.
type ErrPrecondition struct {
	Check   string
	Message string
}

func (e *ErrPrecondition) Error() string {
	return fmt.Sprintf("precondition %s failed: %s", e.Check, e.Message)
}

// NewPreconditionError creates a precondition error.
func NewPreconditionError(check, message string) error {
	return &ErrPrecondition{Check: check, Message: message}
}

// ErrShapeMismatch indicates that two shapes which must agree do not.
type ErrShapeMismatch struct {
	What string
	Want []int
	Got  []int
}

func (e *ErrShapeMismatch) Error() string {
	return fmt.Sprintf("shape mismatch for %s: want %v, got %v", e.What, e.Want, e.Got)
}

// NewShapeMismatchError creates a shape mismatch error.
func NewShapeMismatchError(what string, want, got []int) error {
	return &ErrShapeMismatch{What: what, Want: want, Got: got}
}
