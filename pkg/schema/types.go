package schema

import (
	"encoding/json"
	"fmt"
	"math"
)

// Type checks one decoded JSON value.
type Type interface {
	// Name returns the JSON-ish name of the type (e.g., "string", "[number]").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

// jsonKind names the JSON kind of a value produced by encoding/json.
func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case float64, json.Number:
		return "number"
	case bool:
		return "bool"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

type stringType struct {
	min int
}

func (t stringType) Name() string { return "string" }

func (t stringType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %s", jsonKind(value))
	}
	if len(s) < t.min {
		return fmt.Errorf("must be at least %d characters", t.min)
	}
	return nil
}

type numberType struct{}

func (numberType) Name() string { return "number" }

func (numberType) Validate(value any) error {
	if jsonKind(value) != "number" {
		return fmt.Errorf("expected number, got %s", jsonKind(value))
	}
	return nil
}

type intType struct{}

func (intType) Name() string { return "int" }

func (intType) Validate(value any) error {
	switch v := value.(type) {
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return fmt.Errorf("expected int, got %v", v)
		}
		return nil
	case json.Number:
		if _, err := v.Int64(); err != nil {
			return fmt.Errorf("expected int, got %s", v)
		}
		return nil
	default:
		return fmt.Errorf("expected int, got %s", jsonKind(value))
	}
}

type boolType struct{}

func (boolType) Name() string { return "bool" }

func (boolType) Validate(value any) error {
	if _, ok := value.(bool); !ok {
		return fmt.Errorf("expected bool, got %s", jsonKind(value))
	}
	return nil
}

type sliceType struct {
	elem Type
}

func (t sliceType) Name() string { return "[" + t.elem.Name() + "]" }

func (t sliceType) Validate(value any) error {
	items, ok := value.([]any)
	if !ok {
		return fmt.Errorf("expected array, got %s", jsonKind(value))
	}
	for i, item := range items {
		if err := t.elem.Validate(item); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

type objectType struct {
	schema Schema
}

func (objectType) Name() string { return "object" }

func (t objectType) Validate(value any) error {
	m, ok := value.(map[string]any)
	if !ok {
		return fmt.Errorf("expected object, got %s", jsonKind(value))
	}
	return Validate(t.schema, m)
}

type anyType struct{}

func (anyType) Name() string { return "any" }

func (anyType) Validate(any) error { return nil }

// String accepts any string.
func String() Type { return stringType{} }

// MinString accepts strings of at least min bytes.
func MinString(min int) Type { return stringType{min: min} }

// Number accepts JSON numbers, integral or not.
func Number() Type { return numberType{} }

// Int accepts JSON numbers without a fractional part.
func Int() Type { return intType{} }

// Bool accepts true and false.
func Bool() Type { return boolType{} }

// Slice accepts arrays whose every element is of type elem.
func Slice(elem Type) Type { return sliceType{elem: elem} }

// Object accepts a nested object matching s.
func Object(s Schema) Type { return objectType{schema: s} }

// Any accepts every value, including null.
func Any() Type { return anyType{} }
