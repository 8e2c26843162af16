package toolreg

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// Validatable is implemented by argument structs that need custom business validation.
// Called after schema validation and binding; a failure is reported as a ValidationError.
type Validatable interface {
	Validate() error
}

// validateArgs checks raw against every parameter of d and collects all violations:
// missing required parameters and shape mismatches in declaration order, then unknown
// keys in sorted order. On success it returns the arguments with defaults filled in.
func (d *Descriptor) validateArgs(raw map[string]any) (Args, error) {
	var violations []Violation
	args := make(Args, len(d.validators))
	for _, pv := range d.validators {
		name := pv.param.Name
		v, ok := raw[name]
		if !ok {
			if pv.param.Required() {
				violations = append(violations, Violation{Parameter: name, Reason: "missing required parameter"})
				continue
			}
			args[name] = cloneDefault(pv.param.Default)
			continue
		}
		v, err := jsonValue(v)
		if err != nil {
			violations = append(violations, Violation{Parameter: name, Reason: fmt.Sprintf("not JSON-encodable: %v", err)})
			continue
		}
		v, err = pv.check(v)
		if err != nil {
			violations = append(violations, Violation{
				Parameter: name,
				Reason:    fmt.Sprintf("expected %s: %v", pv.param.Type, err),
			})
			continue
		}
		args[name] = v
	}

	var unknown []string
	for k := range raw {
		if _, ok := d.schema.Param(k); !ok {
			unknown = append(unknown, k)
		}
	}
	slices.Sort(unknown)
	for _, k := range unknown {
		violations = append(violations, Violation{Parameter: k, Reason: "unknown parameter"})
	}

	if len(violations) > 0 {
		return nil, &ValidationError{Tool: d.name, Violations: violations}
	}
	return args, nil
}

// jsonValue brings an argument into the shape decodeJSON produces, so Go callers may pass
// structs or typed slices. Scalars, including native int and int64, are kept as they are;
// composites are always copied.
func jsonValue(v any) (any, error) {
	switch v.(type) {
	case nil, string, bool, float64, json.Number, int, int64:
		return v, nil
	default:
		return normalizeJSON(v)
	}
}

// cloneDefault copies composite defaults so a handler mutating its arguments cannot
// change the default seen by later invocations.
func cloneDefault(v any) any {
	switch v.(type) {
	case map[string]any, []any:
		c, err := normalizeJSON(v)
		if err != nil {
			return v
		}
		return c
	default:
		return v
	}
}

// bindError converts a failure to decode validated arguments into T. It happens when a
// value passes the schema but not the Go type, e.g. 300 for an int8 field.
func bindError(tool string, err error) error {
	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) {
		return &ValidationError{Tool: tool, Violations: []Violation{{
			Parameter: ute.Field,
			Reason:    fmt.Sprintf("cannot use %s as %s", ute.Value, ute.Type),
		}}}
	}
	return &ValidationError{Tool: tool, Violations: []Violation{{Reason: err.Error()}}}
}

// validateCustom runs Validatable on bound arguments. It tries args first (value receiver or
// T is a pointer), then &args for value types whose Validate has a pointer receiver.
func validateCustom[T any](tool string, args T) error {
	err := runValidatable(any(args))
	if _, ok := any(args).(Validatable); !ok && err == nil {
		err = runValidatable(any(&args))
	}
	if err == nil {
		return nil
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return err
	}
	return &ValidationError{Tool: tool, Violations: []Violation{{Reason: err.Error()}}}
}

func runValidatable(v any) error {
	if val, ok := v.(Validatable); ok {
		return val.Validate()
	}
	return nil
}
