package webhook

import (
	"reflect"
	"testing"
)

func wrap(key string, inner map[string]any) map[string]any {
	return map[string]any{key: map[string]any{"message": inner}}
}

func TestUnwrapPlainEntry(t *testing.T) {
	content := map[string]any{"conversation": "hi"}
	entry := map[string]any{
		"key":     map[string]any{"id": "M1"},
		"message": content,
	}

	got := Unwrap(entry)
	if !reflect.DeepEqual(got, content) {
		t.Errorf("expected %v, got %v", content, got)
	}
}

func TestUnwrapNoWrapper(t *testing.T) {
	content := map[string]any{"conversation": "hi"}
	got := Unwrap(content)
	if !reflect.DeepEqual(got, content) {
		t.Errorf("expected content returned as-is, got %v", got)
	}
}

func TestUnwrapNestedEnvelopes(t *testing.T) {
	content := map[string]any{"conversation": "deep"}

	// All orderings of the three wrapper layers must reach the same
	// innermost content.
	orders := [][]string{
		{"ephemeralMessage", "viewOnceMessage", "documentWithCaptionMessage"},
		{"viewOnceMessage", "documentWithCaptionMessage", "ephemeralMessage"},
		{"documentWithCaptionMessage", "ephemeralMessage", "viewOnceMessage"},
	}

	for _, order := range orders {
		wrapped := content
		for _, key := range order {
			wrapped = wrap(key, wrapped)
		}
		entry := map[string]any{"message": wrapped}

		got := Unwrap(entry)
		if !reflect.DeepEqual(got, content) {
			t.Errorf("order %v: expected %v, got %v", order, content, got)
		}
	}
}

func TestUnwrapViewOnceV2(t *testing.T) {
	content := map[string]any{"imageMessage": map[string]any{"caption": "once"}}
	entry := map[string]any{"message": wrap("viewOnceMessageV2", content)}

	got := Unwrap(entry)
	if !reflect.DeepEqual(got, content) {
		t.Errorf("expected %v, got %v", content, got)
	}
}

func TestUnwrapBadWrapper(t *testing.T) {
	// Wrapper key present but its message sub-field is not a mapping.
	entry := map[string]any{
		"ephemeralMessage": map[string]any{"message": "not-a-map"},
	}

	got := Unwrap(entry)
	if len(got) != 0 {
		t.Errorf("expected empty mapping, got %v", got)
	}
}

func TestUnwrapNilEntry(t *testing.T) {
	got := Unwrap(nil)
	if len(got) != 0 {
		t.Errorf("expected empty mapping for nil entry, got %v", got)
	}
}

func TestUnwrapDepthGuard(t *testing.T) {
	// Self-nesting deeper than the guard must terminate with an empty map.
	inner := map[string]any{"conversation": "bottom"}
	wrapped := inner
	for i := 0; i < maxUnwrapDepth+2; i++ {
		wrapped = map[string]any{"message": wrapped}
	}

	got := Unwrap(wrapped)
	if len(got) != 0 {
		t.Errorf("expected empty mapping past depth guard, got %v", got)
	}
}
