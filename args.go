package toolreg

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
)

// Args holds validated arguments keyed by parameter name, with defaults already applied.
// Numbers are json.Number holding the literal the caller sent (or a native int, int64 or
// float64 from Go callers); the typed getters convert and return the zero value when a
// parameter is absent, null or of another type.
type Args map[string]any

// Has reports whether name is present and not null.
func (a Args) Has(name string) bool {
	v, ok := a[name]
	return ok && v != nil
}

func (a Args) String(name string) string {
	s, _ := a[name].(string)
	return s
}

func (a Args) Bool(name string) bool {
	b, _ := a[name].(bool)
	return b
}

func (a Args) Float(name string) float64 {
	switch v := a[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	}
	return 0
}

func (a Args) Int(name string) int64 {
	switch v := a[name].(type) {
	case float64:
		return int64(math.Trunc(v))
	case int:
		return int64(v)
	case int64:
		return v
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		f, _ := v.Float64()
		return int64(math.Trunc(f))
	}
	return 0
}

// decodeJSON unmarshals exactly one JSON value from data, keeping numbers as json.Number
// so integers beyond 2^53 survive.
func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}

// Decode binds the arguments into target by name through their JSON encoding.
func (a Args) Decode(target any) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}
