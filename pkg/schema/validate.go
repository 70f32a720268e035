package schema

// Field pairs a Type with presence rules.
type Field struct {
	Type     Type
	Optional bool // the key may be absent
	Nullable bool // the value may be JSON null
}

// Schema is a map of field names to their expected shape.
// Keys not listed in the schema are ignored.
type Schema map[string]Field

// Required declares a field that must be present and non-null.
func Required(t Type) Field { return Field{Type: t} }

// Optional declares a field that may be absent but is never null.
func Optional(t Type) Field { return Field{Type: t, Optional: true} }

// Nullish declares a field that may be absent or null.
func Nullish(t Type) Field { return Field{Type: t, Optional: true, Nullable: true} }

// Validate checks if data conforms to the schema.
// Returns an error with all validation failures found.
func Validate(schema Schema, data map[string]any) error {
	if len(schema) == 0 {
		return nil
	}

	var errs []error

	for fieldName, field := range schema {
		if err := validateField(fieldName, field, data); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}

	return nil
}

func validateField(name string, field Field, data map[string]any) error {
	value, exists := data[name]
	if !exists {
		if field.Optional {
			return nil
		}
		return &ValidationError{Key: name, Reason: "required"}
	}

	if value == nil {
		if field.Nullable {
			return nil
		}
		if _, isAny := field.Type.(anyType); isAny {
			return nil
		}
		return &ValidationError{Key: name, Reason: "must not be null"}
	}

	if err := field.Type.Validate(value); err != nil {
		return &ValidationError{Key: name, Reason: err.Error(), Value: value}
	}
	return nil
}
