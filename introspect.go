package toolreg

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"
)

var (
	customTypesMu sync.RWMutex
	customTypes   = map[reflect.Type]Type{
		reflect.TypeFor[time.Time]():       StringType,
		reflect.TypeFor[json.RawMessage](): AnyType,
	}
)

// RegisterType maps a Go type to a fixed semantic type in introspected schemas, e.g.
// RegisterType(time.Time{}, StringType). emptyInstance must not be nil.
// Pointer fields (*T) become optional<T>; call RegisterType once for the value type.
// Call RegisterType at application startup before the first NewFuncTool.
func RegisterType(emptyInstance any, t Type) {
	if emptyInstance == nil {
		panic("toolreg: RegisterType emptyInstance must not be nil")
	}
	if t.Kind == "" {
		panic("toolreg: RegisterType type kind must not be empty")
	}
	customTypesMu.Lock()
	defer customTypesMu.Unlock()
	customTypes[reflect.TypeOf(emptyInstance)] = t
}

func lookupCustomType(rt reflect.Type) (Type, bool) {
	customTypesMu.RLock()
	defer customTypesMu.RUnlock()
	t, ok := customTypes[rt]
	return t, ok
}

// introspectArgs returns the ordered parameters described by the argument struct typ.
// Names come from json tags, descriptions from description tags, defaults from default tags.
func introspectArgs(typ reflect.Type) ([]ParameterSpec, error) {
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil, &SchemaError{Reason: fmt.Sprintf("arguments must be a struct, got %s", typ)}
	}
	return structFields(typ, "", map[reflect.Type]bool{typ: true})
}

// introspectResult maps the handler's result type to a Type. Interface types become any.
func introspectResult(typ reflect.Type) (Type, error) {
	t, err := typeOf(typ, "", map[reflect.Type]bool{})
	if err != nil {
		var se *SchemaError
		if errors.As(err, &se) && se.Parameter == "" {
			se.Reason = "return type: " + se.Reason
		}
		return Type{}, err
	}
	return t, nil
}

func structFields(typ reflect.Type, prefix string, visiting map[reflect.Type]bool) ([]ParameterSpec, error) {
	var params []ParameterSpec
	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() && !(field.Anonymous && derefType(field.Type).Kind() == reflect.Struct) {
			continue
		}
		name, opts := parseJSONTag(field)
		if name == "-" {
			continue
		}
		ft := field.Type
		if field.Anonymous && name == "" && derefType(ft).Kind() == reflect.Struct {
			inner := derefType(ft)
			if visiting[inner] {
				return nil, &SchemaError{Parameter: prefix + inner.Name(), Reason: "recursive type " + inner.String()}
			}
			visiting[inner] = true
			nested, err := structFields(inner, prefix, visiting)
			delete(visiting, inner)
			if err != nil {
				return nil, err
			}
			params = append(params, nested...)
			continue
		}
		if name == "" {
			name = field.Name
		}
		path := prefix + name

		t, err := typeOf(ft, path, visiting)
		if err != nil {
			return nil, err
		}
		if enumTag := field.Tag.Get("enum"); enumTag != "" {
			if t, err = applyEnumTag(t, enumTag); err != nil {
				return nil, &SchemaError{Parameter: path, Reason: err.Error()}
			}
		}

		p := ParameterSpec{Name: name, Type: t, Description: field.Tag.Get("description")}
		switch def, ok := field.Tag.Lookup("default"); {
		case ok:
			v, err := parseDefault(t, def)
			if err != nil {
				return nil, &SchemaError{Parameter: path, Reason: "default: " + err.Error()}
			}
			p = p.WithDefault(v)
		case t.Kind == KindOptional:
			p = p.WithDefault(nil)
		case slices.Contains(opts, "omitempty"):
			v, err := normalizeJSON(reflect.Zero(ft).Interface())
			if err != nil {
				return nil, &SchemaError{Parameter: path, Reason: "default: " + err.Error()}
			}
			if v == nil {
				// nil slices and maps encode as null
				p.Type = OptionalOf(t)
			}
			p = p.WithDefault(v)
		}
		params = append(params, p)
	}
	return params, nil
}

func typeOf(rt reflect.Type, path string, visiting map[reflect.Type]bool) (Type, error) {
	if t, ok := lookupCustomType(rt); ok {
		return t, nil
	}
	switch rt.Kind() {
	case reflect.String:
		return StringType, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return IntegerType, nil
	case reflect.Float32, reflect.Float64:
		return FloatType, nil
	case reflect.Bool:
		return BooleanType, nil
	case reflect.Interface:
		if rt.NumMethod() == 0 {
			return AnyType, nil
		}
	case reflect.Pointer:
		inner, err := typeOf(rt.Elem(), path, visiting)
		if err != nil {
			return Type{}, err
		}
		return OptionalOf(inner), nil
	case reflect.Slice, reflect.Array:
		if rt.Kind() == reflect.Slice && rt.Elem().Kind() == reflect.Uint8 {
			// encoding/json renders []byte as a base64 string
			return StringType, nil
		}
		elem, err := typeOf(rt.Elem(), path+"[]", visiting)
		if err != nil {
			return Type{}, err
		}
		return ArrayOf(elem), nil
	case reflect.Map:
		if rt.Key().Kind() != reflect.String {
			return Type{}, &SchemaError{Parameter: path, Reason: fmt.Sprintf("unsupported map key type %s", rt.Key())}
		}
		elem, err := typeOf(rt.Elem(), path+"{}", visiting)
		if err != nil {
			return Type{}, err
		}
		return MapOf(elem), nil
	case reflect.Struct:
		if visiting[rt] {
			return Type{}, &SchemaError{Parameter: path, Reason: "recursive type " + rt.String()}
		}
		visiting[rt] = true
		defer delete(visiting, rt)
		prefix := ""
		if path != "" {
			prefix = path + "."
		}
		fields, err := structFields(rt, prefix, visiting)
		if err != nil {
			return Type{}, err
		}
		return ObjectOf(fields...), nil
	}
	return Type{}, &SchemaError{Parameter: path, Reason: fmt.Sprintf("unsupported type %s", rt)}
}

func applyEnumTag(t Type, tag string) (Type, error) {
	parts := strings.Split(tag, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	switch {
	case t.Kind == KindString:
		return EnumOf(values...), nil
	case t.Kind == KindOptional && t.Elem != nil && t.Elem.Kind == KindString:
		return OptionalOf(EnumOf(values...)), nil
	default:
		return Type{}, fmt.Errorf("enum tag requires a string field, got %s", t)
	}
}

// parseDefault converts a default tag into the JSON form of a value of type t.
func parseDefault(t Type, s string) (any, error) {
	if t.Kind == KindOptional {
		if s == "null" {
			return nil, nil
		}
		if t.Elem != nil {
			t = *t.Elem
		}
	}
	switch t.Kind {
	case KindString:
		return s, nil
	case KindEnum:
		if !slices.Contains(t.Enum, s) {
			return nil, fmt.Errorf("%q is not one of %s", s, strings.Join(t.Enum, ", "))
		}
		return s, nil
	case KindInteger:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, err
		}
		return json.Number(strconv.FormatInt(n, 10)), nil
	case KindFloat:
		return strconv.ParseFloat(s, 64)
	case KindBoolean:
		return strconv.ParseBool(s)
	default:
		var v any
		if err := decodeJSON([]byte(s), &v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

// normalizeJSON returns v in the shape decodeJSON produces when decoding into any,
// so defaults compare and validate like caller-supplied values.
func normalizeJSON(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := decodeJSON(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func parseJSONTag(field reflect.StructField) (string, []string) {
	tag, ok := field.Tag.Lookup("json")
	if !ok {
		return "", nil
	}
	parts := strings.Split(tag, ",")
	return parts[0], parts[1:]
}

func derefType(rt reflect.Type) reflect.Type {
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	return rt
}

var anonymousFuncRe = regexp.MustCompile(`^func\d+$`)

// deriveName turns the symbol of fn into a snake_case tool name: pkg.GetDocument becomes
// "get_document", (*Store).Lookup becomes "lookup". Closures have no usable name.
func deriveName(fn any) (string, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return "", &SchemaError{Reason: "handler must be a non-nil function"}
	}
	rf := runtime.FuncForPC(v.Pointer())
	if rf == nil {
		return "", &SchemaError{Reason: "cannot resolve handler symbol; use WithName"}
	}
	full := rf.Name()
	if i := strings.LastIndex(full, "/"); i >= 0 {
		full = full[i+1:]
	}
	full = strings.TrimSuffix(full, "-fm")
	parts := strings.Split(full, ".")
	last := parts[len(parts)-1]
	if anonymousFuncRe.MatchString(last) || last == "" {
		return "", &SchemaError{Reason: "cannot derive a name from an anonymous function; use WithName"}
	}
	return snakeCase(last), nil
}

func snakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]))
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if i > 0 && (prevLower || (nextLower && unicode.IsUpper(runes[i-1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
