package schema

import (
	"testing"
)

func TestValidate_Success(t *testing.T) {
	s := Schema{
		"buttonIndex": Required(Number()),
		"postUrl":     Required(String()),
		"inputText":   Optional(String()),
		"referrer":    Nullish(String()),
		"options":     Required(Slice(String())),
	}

	data := map[string]any{
		"buttonIndex": float64(1),
		"postUrl":     "https://frame.example",
		"referrer":    nil,
		"options":     []any{"yes", "no"},
	}

	if err := Validate(s, data); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_MissingField(t *testing.T) {
	s := Schema{
		"postUrl": Required(String()),
		"pubId":   Required(String()),
	}

	err := Validate(s, map[string]any{"postUrl": "https://frame.example"})
	if err == nil {
		t.Fatal("Validate() should return error for missing field")
	}

	aggr, ok := err.(*AggregateError)
	if !ok {
		t.Fatalf("error should be *AggregateError, got %T", err)
	}
	if len(aggr.Errors) != 1 {
		t.Errorf("Validate() = %d errors, want 1", len(aggr.Errors))
	}

	validErr, ok := aggr.Errors[0].(*ValidationError)
	if !ok {
		t.Fatalf("error should be *ValidationError, got %T", aggr.Errors[0])
	}
	if validErr.Key != "pubId" {
		t.Errorf("error Key = %q, want pubId", validErr.Key)
	}
}

func TestValidate_NullHandling(t *testing.T) {
	s := Schema{
		"fingerprint": Nullish(String()),
		"platform":    Required(String()),
		"properties":  Optional(Any()),
		"inputText":   Optional(String()),
	}

	data := map[string]any{
		"fingerprint": nil,
		"platform":    "web",
		"properties":  nil,
		"inputText":   nil,
	}

	keys := InvalidKeys(Validate(s, data))
	if len(keys) != 1 || keys[0] != "inputText" {
		t.Errorf("InvalidKeys() = %v, want [inputText]", keys)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	s := Schema{
		"length":  Required(Number()),
		"options": Required(Slice(String())),
		"name":    Required(MinString(1)),
	}

	data := map[string]any{
		"length":  "seven",
		"options": []any{"a", 2},
		"name":    "",
	}

	err := Validate(s, data)
	if err == nil {
		t.Fatal("Validate() should return error")
	}

	want := []string{"length", "name", "options"}
	got := InvalidKeys(err)
	if len(got) != len(want) {
		t.Fatalf("InvalidKeys() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("InvalidKeys()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestValidate_NestedObject(t *testing.T) {
	s := Schema{
		"event": Required(Object(Schema{
			"activity": Required(Any()),
		})),
	}

	if err := Validate(s, map[string]any{"event": map[string]any{"activity": []any{}}}); err != nil {
		t.Errorf("nested valid object rejected: %v", err)
	}
	if err := Validate(s, map[string]any{"event": map[string]any{}}); err == nil {
		t.Error("nested object without activity should fail")
	}
	if err := Validate(s, map[string]any{"event": "nope"}); err == nil {
		t.Error("non-object event should fail")
	}
}

func TestValidate_EmptySchema(t *testing.T) {
	if err := Validate(Schema{}, map[string]any{"api_key": "secret123"}); err != nil {
		t.Errorf("Validate() with empty schema should return nil, got %v", err)
	}

	var nilSchema Schema
	if err := Validate(nilSchema, map[string]any{"api_key": "secret123"}); err != nil {
		t.Errorf("Validate() with nil schema should return nil, got %v", err)
	}
}
