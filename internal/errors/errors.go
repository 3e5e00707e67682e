// Package errors classifies failures of an ABX run. A StructuredError names
// the failing operation and carries key/value context (unit index, worker
// rank) that is emitted as log fields when the error is logged.
package errors

import (
	"fmt"
	"runtime"
	"sort"

	"github.com/rs/zerolog"
)

// ErrorType classifies a failure.
type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "validation"
	ErrorTypeConfiguration ErrorType = "configuration"
	ErrorTypePrecondition  ErrorType = "precondition"
	ErrorTypeComputation   ErrorType = "computation"
)

// Kind sentinels match any StructuredError of the same type under errors.Is.
var (
	Validation    error = &StructuredError{Type: ErrorTypeValidation}
	Configuration error = &StructuredError{Type: ErrorTypeConfiguration}
	Precondition  error = &StructuredError{Type: ErrorTypePrecondition}
	Computation   error = &StructuredError{Type: ErrorTypeComputation}
)

// StructuredError is an error tagged with its type, the failing operation
// and free-form context.
type StructuredError struct {
	Type      ErrorType
	Operation string
	Message   string
	Cause     error
	Context   map[string]any
	Stack     []uintptr
}

func (e *StructuredError) Error() string {
	msg := fmt.Sprintf("[%s] %s: %s", e.Type, e.Operation, e.Message)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the kind sentinel for e's type.
func (e *StructuredError) Is(target error) bool {
	t, ok := target.(*StructuredError)
	return ok && t.Operation == "" && t.Type == e.Type
}

// WithContext attaches a key/value pair and returns e for chaining.
func (e *StructuredError) WithContext(key string, value any) *StructuredError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// MarshalZerologObject writes the error's classification and context as log
// fields, so callers can EmbedObject it.
func (e *StructuredError) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("error_type", string(e.Type)).Str("operation", e.Operation)

	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ev.Interface(k, e.Context[k])
	}

	if origin := e.Origin(); origin != "" {
		ev.Str("origin", origin)
	}
}

// Origin returns "function:line" of the frame that created the error.
func (e *StructuredError) Origin() string {
	if len(e.Stack) == 0 {
		return ""
	}
	frame, _ := runtime.CallersFrames(e.Stack).Next()
	if frame.Function == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", frame.Function, frame.Line)
}

func newError(errType ErrorType, cause error, operation, message string) *StructuredError {
	return &StructuredError{
		Type:      errType,
		Operation: operation,
		Message:   message,
		Cause:     cause,
		Context:   make(map[string]any),
		Stack:     captureStack(),
	}
}

// captureStack skips runtime.Callers, itself, newError and the exported constructor.
func captureStack() []uintptr {
	var pcs [32]uintptr
	n := runtime.Callers(4, pcs[:])
	return pcs[:n]
}

func NewComputationError(operation, message string) *StructuredError {
	return newError(ErrorTypeComputation, nil, operation, message)
}

// The Wrap constructors return a nil *StructuredError for a nil err so that
// WithContext chains stay on the concrete type. Check err before calling
// them when the result is returned as an error: a nil pointer stored in an
// error interface is not a nil error.

func WrapValidationError(err error, operation, message string) *StructuredError {
	if err == nil {
		return nil
	}
	return newError(ErrorTypeValidation, err, operation, message)
}

func WrapConfigurationError(err error, operation, message string) *StructuredError {
	if err == nil {
		return nil
	}
	return newError(ErrorTypeConfiguration, err, operation, message)
}

func WrapPreconditionError(err error, operation, message string) *StructuredError {
	if err == nil {
		return nil
	}
	return newError(ErrorTypePrecondition, err, operation, message)
}

func WrapComputationError(err error, operation, message string) *StructuredError {
	if err == nil {
		return nil
	}
	return newError(ErrorTypeComputation, err, operation, message)
}
