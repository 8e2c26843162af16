package toolreg

import (
	"slices"
	"strings"
)

// Kind is the semantic type tag of a parameter or result.
type Kind string

const (
	KindString   Kind = "string"
	KindInteger  Kind = "integer"
	KindFloat    Kind = "float"
	KindBoolean  Kind = "boolean"
	KindObject   Kind = "object"
	KindArray    Kind = "array"
	KindEnum     Kind = "enum"
	KindOptional Kind = "optional"
	KindAny      Kind = "any"
)

// Type describes a value in the semantic type vocabulary.
//
// Elem is the item type of an array, the value type of a map-shaped object, or the
// wrapped type of an optional. Fields is set for struct-shaped objects and is ordered.
// Enum lists the allowed values of an enum.
type Type struct {
	Kind   Kind
	Elem   *Type
	Enum   []string
	Fields []ParameterSpec
}

var (
	StringType  = Type{Kind: KindString}
	IntegerType = Type{Kind: KindInteger}
	FloatType   = Type{Kind: KindFloat}
	BooleanType = Type{Kind: KindBoolean}
	ObjectType  = Type{Kind: KindObject}
	AnyType     = Type{Kind: KindAny}
)

// ArrayOf returns an array type with the given item type.
func ArrayOf(elem Type) Type {
	return Type{Kind: KindArray, Elem: &elem}
}

// MapOf returns an object type whose values all have the given type.
func MapOf(elem Type) Type {
	return Type{Kind: KindObject, Elem: &elem}
}

// ObjectOf returns an object type with a fixed, ordered set of fields.
func ObjectOf(fields ...ParameterSpec) Type {
	return Type{Kind: KindObject, Fields: slices.Clone(fields)}
}

// EnumOf returns a string enum type.
func EnumOf(values ...string) Type {
	return Type{Kind: KindEnum, Enum: slices.Clone(values)}
}

// OptionalOf wraps t so that null is accepted as well. Wrapping an optional or any is a no-op.
func OptionalOf(t Type) Type {
	if t.Kind == KindOptional || t.Kind == KindAny {
		return t
	}
	return Type{Kind: KindOptional, Elem: &t}
}

// String renders the type for messages, e.g. "array<integer>" or "optional<string>".
func (t Type) String() string {
	switch t.Kind {
	case KindArray, KindOptional:
		if t.Elem != nil {
			return string(t.Kind) + "<" + t.Elem.String() + ">"
		}
	case KindObject:
		if t.Elem != nil {
			return "object<" + t.Elem.String() + ">"
		}
	case KindEnum:
		return "enum(" + strings.Join(t.Enum, "|") + ")"
	case "":
		return string(KindAny)
	}
	return string(t.Kind)
}

// ParameterSpec describes one named input of a tool.
type ParameterSpec struct {
	Name        string
	Type        Type
	Description string
	HasDefault  bool
	Default     any
}

// Param returns a required parameter of the given type.
func Param(name string, t Type) ParameterSpec {
	return ParameterSpec{Name: name, Type: t}
}

// WithDescription returns a copy of p with the description set.
func (p ParameterSpec) WithDescription(desc string) ParameterSpec {
	p.Description = desc
	return p
}

// WithDefault returns a copy of p with a default value, which makes it optional.
// The value is checked against the parameter type when the tool is built.
func (p ParameterSpec) WithDefault(v any) ParameterSpec {
	p.HasDefault = true
	p.Default = v
	return p
}

// Required reports whether the caller must supply the parameter: no default means required.
func (p ParameterSpec) Required() bool {
	return !p.HasDefault
}
