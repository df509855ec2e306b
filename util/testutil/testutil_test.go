package testutil

import (
	"reflect"
	"testing"
)

func TestJS(t *testing.T) {
	got := JS(map[string]interface{}{
		"loading": map[string]interface{}{"spinner": "on"},
	})
	want := `{"loading":{"spinner":"on"}}`
	if got != want {
		t.Fatalf("JS() = %s, want %s", got, want)
	}

	// Map keys render sorted, so structurally equal values render
	// equally.
	a := JS(map[string]interface{}{"b": 1, "a": 2})
	b := JS(map[string]interface{}{"a": 2, "b": 1})
	if a != b {
		t.Fatalf("%s != %s", a, b)
	}
}

func TestDwimjs(t *testing.T) {
	got := Dwimjs(`{"name":"FETCH","tries":1}`)
	want := map[string]interface{}{"name": "FETCH", "tries": float64(1)}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Dwimjs() = %#v, want %#v", got, want)
	}

	if got := Dwimjs(42); got != 42 {
		t.Fatalf("Dwimjs(42) = %#v", got)
	}
}
