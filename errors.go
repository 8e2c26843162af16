package toolreg

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind is the stable, machine-readable category of a registry error.
// It is the "kind" field of the HTTP error envelope.
type ErrorKind string

const (
	KindDuplicateName ErrorKind = "DuplicateNameError"
	KindSchema        ErrorKind = "SchemaError"
	KindNotFound      ErrorKind = "NotFoundError"
	KindValidation    ErrorKind = "ValidationError"
	KindHandler       ErrorKind = "HandlerError"
)

// Sentinel errors for toolreg. Use errors.Is to check.
var (
	ErrDuplicateName = errors.New("tool name already registered")
	ErrSchema        = errors.New("invalid tool schema")
	ErrNotFound      = errors.New("tool not found")
	ErrValidation    = errors.New("validation failed")
	ErrHandler       = errors.New("tool handler failed")
	ErrFrozen        = errors.New("catalog is frozen")
	ErrShutdown      = errors.New("dispatcher is shut down")
)

// DuplicateNameError is returned by Catalog.Register when the name is taken.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("tool %q already registered", e.Name)
}

func (e *DuplicateNameError) Unwrap() error { return ErrDuplicateName }

// SchemaError reports a type or default that cannot be described as a tool schema.
// Parameter is empty when the problem is not tied to a single parameter (e.g. the return type).
type SchemaError struct {
	Tool      string
	Parameter string
	Reason    string
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("schema error")
	if e.Tool != "" {
		fmt.Fprintf(&b, " in tool %q", e.Tool)
	}
	if e.Parameter != "" {
		fmt.Fprintf(&b, " for parameter %q", e.Parameter)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	return b.String()
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// NotFoundError is returned when a tool name is not in the catalog.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("tool %q not found", e.Name)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// Violation is one failing parameter of a ValidationError.
type Violation struct {
	Parameter string `json:"parameter"`
	Reason    string `json:"reason"`
}

// ValidationError carries every violation found in an argument payload, not just the first.
// Handlers may return it themselves for business validation; the dispatcher keeps its kind.
type ValidationError struct {
	Tool       string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		if v.Parameter == "" {
			parts[i] = v.Reason
			continue
		}
		parts[i] = v.Parameter + ": " + v.Reason
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Parameters returns the names of the failing parameters in violation order.
func (e *ValidationError) Parameters() []string {
	out := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		out = append(out, v.Parameter)
	}
	return out
}

// HandlerError wraps a failure returned (or panicked) by the tool's own logic.
type HandlerError struct {
	Tool string
	Err  error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("tool %q failed: %v", e.Tool, e.Err)
}

func (e *HandlerError) Unwrap() []error { return []error{ErrHandler, e.Err} }

// KindOf maps err to its ErrorKind. A HandlerError is always KindHandler whatever it wraps;
// errors outside the taxonomy are reported as KindHandler too.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrHandler):
		return KindHandler
	case errors.Is(err, ErrDuplicateName):
		return KindDuplicateName
	case errors.Is(err, ErrSchema):
		return KindSchema
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrValidation):
		return KindValidation
	default:
		return KindHandler
	}
}

// panicError wraps a recovered panic value for HandlerError.
type panicError struct{ p any }

func (e *panicError) Error() string {
	return "panic: " + fmt.Sprint(e.p)
}
