package schema

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate_Success(t *testing.T) {
	s := Schema{
		"count": Sized(8, true),
		"gain":  Float(),
		"on":    Bool(),
		"taps":  List(Int(), 2),
	}
	data := map[string]any{
		"count": 3,
		"gain":  0.5,
		"on":    true,
		"taps":  []any{1, -1},
	}
	if err := Validate(s, data); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_SkipsNilAndUntyped(t *testing.T) {
	s := Schema{"count": Int()}
	data := map[string]any{"count": nil, "free": "anything"}
	if err := Validate(s, data); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_AggregatesErrors(t *testing.T) {
	s := Schema{"a": Sized(4, true), "b": Bool()}
	err := Validate(s, map[string]any{"a": 99, "b": "yes"})
	if err == nil {
		t.Fatal("expected error")
	}

	var aggr *AggregateError
	if !errors.As(err, &aggr) {
		t.Fatalf("expected *AggregateError, got %T", err)
	}
	if len(aggr.Errors) != 2 {
		t.Errorf("expected 2 errors, got %d", len(aggr.Errors))
	}
	if len(ValidationErrors(err)) != 2 {
		t.Error("ValidationErrors should expose both failures")
	}
	if !strings.Contains(err.Error(), `field "a"`) {
		t.Errorf("message should name the field: %s", err)
	}
}
