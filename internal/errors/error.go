package errors

import (
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryUsage      Category = "usage"
	CategoryStructural Category = "structural"
	CategoryAsync      Category = "async"
	CategoryEffect     Category = "effect"
	CategoryScheduler  Category = "scheduler"
	CategoryConfig     Category = "config"
	CategoryProtocol   Category = "protocol"
)

// Attr is a key/value pair of context attached to an error.
type Attr struct {
	Key   string
	Value any
}

// String returns the attribute as key=value.
func (a Attr) String() string {
	return fmt.Sprintf("%s=%v", a.Key, a.Value)
}

// ReconcileError is a structured error with context, suggestions, and documentation.
type ReconcileError struct {
	// Code is a unique error identifier (e.g., "R001").
	Code string

	// Category is the error type (usage, structural, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Attrs carries the context the error was raised in (component, key, ...).
	Attrs []Attr

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *ReconcileError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *ReconcileError) Unwrap() error {
	return e.Wrapped
}

// With appends a context attribute.
func (e *ReconcileError) With(key string, value any) *ReconcileError {
	e.Attrs = append(e.Attrs, Attr{Key: key, Value: value})
	return e
}

// Attr returns the value of the named context attribute.
func (e *ReconcileError) Attr(key string) (any, bool) {
	for _, a := range e.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return nil, false
}

// WithSuggestion adds a fix suggestion to the error.
func (e *ReconcileError) WithSuggestion(s string) *ReconcileError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *ReconcileError) WithDetail(d string) *ReconcileError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *ReconcileError) Wrap(err error) *ReconcileError {
	e.Wrapped = err
	return e
}

// LogArgs flattens the error into slog key/value arguments.
func (e *ReconcileError) LogArgs() []any {
	args := make([]any, 0, 4+2*len(e.Attrs))
	args = append(args, "code", e.Code, "category", string(e.Category))
	for _, a := range e.Attrs {
		args = append(args, a.Key, a.Value)
	}
	if e.Wrapped != nil {
		args = append(args, "err", e.Wrapped)
	}
	return args
}

// New creates a ReconcileError from a registered error code.
func New(code string) *ReconcileError {
	template, ok := registry[code]
	if !ok {
		return &ReconcileError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &ReconcileError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new ReconcileError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *ReconcileError {
	return &ReconcileError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a ReconcileError.
func FromError(err error, code string) *ReconcileError {
	if err == nil {
		return nil
	}
	if re, ok := err.(*ReconcileError); ok {
		return re
	}
	return New(code).Wrap(err)
}
