package toolreg

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"slices"
	"strconv"

	"github.com/google/jsonschema-go/jsonschema"
)

// ToolSchema is the input and output description of a tool. Params keep declaration order.
type ToolSchema struct {
	Params            []ParameterSpec
	Output            Type
	OutputDescription string
}

// Param returns the parameter with the given name.
func (s ToolSchema) Param(name string) (ParameterSpec, bool) {
	for _, p := range s.Params {
		if p.Name == name {
			return p, true
		}
	}
	return ParameterSpec{}, false
}

// InputJSONSchema renders the parameters as a strict JSON Schema object
// (additionalProperties: false on every struct-shaped object).
func (s ToolSchema) InputJSONSchema() map[string]any {
	return objectSchema(s.Params, true)
}

// OutputJSONSchema renders the result type. An undeclared result renders as the empty schema.
func (s ToolSchema) OutputJSONSchema() map[string]any {
	m := typeSchema(s.Output, false)
	if s.OutputDescription != "" {
		m["description"] = s.OutputDescription
	}
	return m
}

func (s ToolSchema) clone() ToolSchema {
	s.Params = slices.Clone(s.Params)
	return s
}

func objectSchema(params []ParameterSpec, strict bool) map[string]any {
	props := make(map[string]any, len(params))
	required := make([]any, 0, len(params))
	for _, p := range params {
		ps := typeSchema(p.Type, strict)
		if p.Description != "" {
			ps["description"] = p.Description
		}
		if p.HasDefault {
			ps["default"] = p.Default
		}
		props[p.Name] = ps
		if p.Required() {
			required = append(required, p.Name)
		}
	}
	m := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		m["required"] = required
	}
	if strict {
		m["additionalProperties"] = false
	}
	return m
}

func typeSchema(t Type, strict bool) map[string]any {
	switch t.Kind {
	case KindString:
		return map[string]any{"type": "string"}
	case KindInteger:
		return map[string]any{"type": "integer"}
	case KindFloat:
		return map[string]any{"type": "number"}
	case KindBoolean:
		return map[string]any{"type": "boolean"}
	case KindEnum:
		enum := make([]any, len(t.Enum))
		for i, v := range t.Enum {
			enum[i] = v
		}
		return map[string]any{"type": "string", "enum": enum}
	case KindArray:
		items := map[string]any{}
		if t.Elem != nil {
			items = typeSchema(*t.Elem, strict)
		}
		return map[string]any{"type": "array", "items": items}
	case KindObject:
		if t.Fields != nil {
			return objectSchema(t.Fields, strict)
		}
		m := map[string]any{"type": "object"}
		if t.Elem != nil {
			m["additionalProperties"] = typeSchema(*t.Elem, strict)
		}
		return m
	case KindOptional:
		if t.Elem == nil {
			return map[string]any{}
		}
		return nullable(typeSchema(*t.Elem, strict))
	default:
		return map[string]any{}
	}
}

// nullable widens a schema to also accept null: "T" becomes ["T", "null"] and enums gain null.
func nullable(m map[string]any) map[string]any {
	if ty, ok := m["type"].(string); ok {
		m["type"] = []any{ty, "null"}
	}
	if enum, ok := m["enum"].([]any); ok {
		m["enum"] = append(enum, nil)
	}
	return m
}

// paramValidator validates one parameter value. *jsonschema.Resolved does the shape check
// on a float64 view of the value; integer range is checked on the exact literal.
type paramValidator struct {
	param    ParameterSpec
	resolved *jsonschema.Resolved
}

func (pv paramValidator) validate(v any) error {
	_, err := pv.check(v)
	return err
}

// check validates v and returns it with integer literals in canonical form (1e3 becomes
// 1000), so binding into Go integer types cannot fail on notation. Nested values are
// rewritten in place; callers pass their own copy.
func (pv paramValidator) check(v any) (any, error) {
	if err := pv.resolved.Validate(floatView(v)); err != nil {
		return nil, err
	}
	return canonicalIntegers(pv.param.Type, v)
}

// floatView copies v with every number as float64, the only numeric shape the schema
// validator understands.
func floatView(v any) any {
	switch n := v.(type) {
	case json.Number:
		f, _ := n.Float64()
		return f
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case []any:
		out := make([]any, len(n))
		for i, item := range n {
			out[i] = floatView(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, item := range n {
			out[k] = floatView(item)
		}
		return out
	default:
		return v
	}
}

// canonicalInteger checks that an integer-typed value fits in int64 and rewrites a
// json.Number in exponent or fraction form as a plain integer literal.
func canonicalInteger(v any) (any, error) {
	switch n := v.(type) {
	case float64:
		if n < math.MinInt64 || n >= math.MaxInt64 {
			return nil, fmt.Errorf("%v is outside the integer range", n)
		}
	case json.Number:
		_, err := strconv.ParseInt(n.String(), 10, 64)
		if err == nil {
			return n, nil
		}
		if errors.Is(err, strconv.ErrRange) {
			return nil, fmt.Errorf("%s is outside the integer range", n)
		}
		bf, _, err := big.ParseFloat(n.String(), 10, 256, big.ToNearestEven)
		if err != nil {
			return nil, fmt.Errorf("invalid number %s", n)
		}
		i, acc := bf.Int(nil)
		if acc != big.Exact {
			return nil, fmt.Errorf("%s is not a whole number", n)
		}
		if !i.IsInt64() {
			return nil, fmt.Errorf("%s is outside the integer range", n)
		}
		return json.Number(i.String()), nil
	}
	return v, nil
}

// buildSchema merges introspected (or explicitly declared) parameters with the parsed
// documentation, checks the ToolSchema invariants and compiles one validator per parameter.
// Documentation text wins over descriptions that came with the parameters.
// The returned warnings are advisory: documentation completeness is never enforced.
func buildSchema(tool string, params []ParameterSpec, output Type, doc Doc) (ToolSchema, []paramValidator, []string, error) {
	schema := ToolSchema{
		Params:            make([]ParameterSpec, 0, len(params)),
		Output:            output,
		OutputDescription: doc.Returns,
	}
	if err := checkType(output); err != nil {
		return ToolSchema{}, nil, nil, &SchemaError{Tool: tool, Reason: "return type: " + err.Error()}
	}
	validators := make([]paramValidator, 0, len(params))
	seen := make(map[string]bool, len(params))
	var warnings []string

	for _, p := range params {
		if p.Name == "" {
			return ToolSchema{}, nil, nil, &SchemaError{Tool: tool, Reason: "parameter name must not be empty"}
		}
		if seen[p.Name] {
			return ToolSchema{}, nil, nil, &SchemaError{Tool: tool, Parameter: p.Name, Reason: "duplicate parameter name"}
		}
		seen[p.Name] = true
		if err := checkType(p.Type); err != nil {
			return ToolSchema{}, nil, nil, &SchemaError{Tool: tool, Parameter: p.Name, Reason: err.Error()}
		}
		if d := doc.Params[p.Name]; d != "" {
			p.Description = d
		}

		resolved, err := compileRawSchema(typeSchema(p.Type, true))
		if err != nil {
			return ToolSchema{}, nil, nil, &SchemaError{Tool: tool, Parameter: p.Name, Reason: err.Error()}
		}
		pv := paramValidator{param: p, resolved: resolved}
		if p.HasDefault {
			def, err := normalizeJSON(p.Default)
			if err != nil {
				return ToolSchema{}, nil, nil, &SchemaError{Tool: tool, Parameter: p.Name, Reason: "default: " + err.Error()}
			}
			if def, err = pv.check(def); err != nil {
				return ToolSchema{}, nil, nil, &SchemaError{Tool: tool, Parameter: p.Name, Reason: "default does not match type: " + err.Error()}
			}
			p.Default = def
			pv.param = p
		}
		if p.Required() && p.Description == "" {
			warnings = append(warnings, fmt.Sprintf("required parameter %q is undocumented", p.Name))
		}
		schema.Params = append(schema.Params, p)
		validators = append(validators, pv)
	}

	documented := make([]string, 0, len(doc.Params))
	for name := range doc.Params {
		if !seen[name] {
			documented = append(documented, name)
		}
	}
	slices.Sort(documented)
	for _, name := range documented {
		warnings = append(warnings, fmt.Sprintf("documented parameter %q is not in the signature", name))
	}
	return schema, validators, warnings, nil
}

// checkType rejects types that cannot be rendered: unknown kinds, empty enums, untyped optionals.
func checkType(t Type) error {
	switch t.Kind {
	case KindString, KindInteger, KindFloat, KindBoolean, KindAny:
		return nil
	case KindEnum:
		if len(t.Enum) == 0 {
			return fmt.Errorf("enum must list at least one value")
		}
		return nil
	case KindArray:
		if t.Elem != nil {
			return checkType(*t.Elem)
		}
		return nil
	case KindOptional:
		if t.Elem == nil {
			return fmt.Errorf("optional must wrap a type")
		}
		return checkType(*t.Elem)
	case KindObject:
		if t.Elem != nil {
			if err := checkType(*t.Elem); err != nil {
				return err
			}
		}
		seen := make(map[string]bool, len(t.Fields))
		for _, f := range t.Fields {
			if f.Name == "" || seen[f.Name] {
				return fmt.Errorf("object field names must be unique and non-empty")
			}
			seen[f.Name] = true
			if err := checkType(f.Type); err != nil {
				return fmt.Errorf("field %s: %w", f.Name, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported kind %q", t.Kind)
	}
}

// canonicalIntegers walks v alongside t and applies canonicalInteger to every integer.
// Shape has already been validated, so mismatches are ignored here.
func canonicalIntegers(t Type, v any) (any, error) {
	switch t.Kind {
	case KindInteger:
		return canonicalInteger(v)
	case KindOptional:
		if t.Elem != nil && v != nil {
			return canonicalIntegers(*t.Elem, v)
		}
	case KindArray:
		items, _ := v.([]any)
		if t.Elem == nil {
			return v, nil
		}
		for i, item := range items {
			c, err := canonicalIntegers(*t.Elem, item)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			items[i] = c
		}
	case KindObject:
		obj, _ := v.(map[string]any)
		for _, f := range t.Fields {
			if fv, ok := obj[f.Name]; ok {
				c, err := canonicalIntegers(f.Type, fv)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", f.Name, err)
				}
				obj[f.Name] = c
			}
		}
		if t.Elem != nil && t.Fields == nil {
			for k, fv := range obj {
				c, err := canonicalIntegers(*t.Elem, fv)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", k, err)
				}
				obj[k] = c
			}
		}
	}
	return v, nil
}

// compileRawSchema compiles a raw JSON Schema map into a resolved validator. The map is not mutated.
func compileRawSchema(schemaMap map[string]any) (*jsonschema.Resolved, error) {
	data, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, err
	}
	var s jsonschema.Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return s.Resolve(nil)
}
