package toolreg

import (
	"encoding/json"
	"errors"
	"time"
)

// InvocationRequest is a single call of a tool by name. The dispatcher assigns a random
// ID when ID is empty.
type InvocationRequest struct {
	ID   string         `json:"id,omitempty"`
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

// InvocationResult is the outcome of an invocation. Exactly one of Value and Err is meaningful:
// Err is nil on success.
type InvocationResult struct {
	ID       string        `json:"id"`
	Tool     string        `json:"tool"`
	Value    any           `json:"result,omitempty"`
	Err      *Failure      `json:"error,omitempty"`
	Duration time.Duration `json:"-"`
}

// OK reports whether the invocation succeeded.
func (r InvocationResult) OK() bool { return r.Err == nil }

// Failure is the transport-neutral form of an invocation error. It marshals to the
// {kind, message, details} shape of the error envelope.
type Failure struct {
	Kind    ErrorKind   `json:"kind"`
	Message string      `json:"message"`
	Details []Violation `json:"details,omitempty"`
	cause   error
}

func (f *Failure) Error() string { return f.Message }

// Unwrap returns the original error so errors.Is and errors.As still see the taxonomy types.
func (f *Failure) Unwrap() error { return f.cause }

// MarshalJSON always emits details, as an empty list when there are none.
func (f *Failure) MarshalJSON() ([]byte, error) {
	details := f.Details
	if details == nil {
		details = []Violation{}
	}
	return json.Marshal(struct {
		Kind    ErrorKind   `json:"kind"`
		Message string      `json:"message"`
		Details []Violation `json:"details"`
	}{f.Kind, f.Message, details})
}

// NewFailure converts err into a Failure. ValidationError violations become Details.
func NewFailure(err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	f = &Failure{Kind: KindOf(err), Message: err.Error(), cause: err}
	var ve *ValidationError
	if f.Kind == KindValidation && errors.As(err, &ve) {
		f.Details = append([]Violation(nil), ve.Violations...)
	}
	return f
}
