package metaobject

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeWidensIntegers(t *testing.T) {
	t.Parallel()

	got, err := Normalize(map[string]any{
		"int":    7,
		"int32":  int32(8),
		"uint16": uint16(9),
		"nested": []any{int8(1), uint32(2)},
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	want := map[string]any{
		"int":    int64(7),
		"int32":  int64(8),
		"uint16": int64(9),
		"nested": []any{int64(1), int64(2)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected normalized value (-want +got):\n%s", diff)
	}
}

func TestNormalizeJSONNumber(t *testing.T) {
	t.Parallel()

	got, err := Normalize(map[string]any{
		"count": json.Number("42"),
		"ratio": json.Number("0.5"),
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	want := map[string]any{
		"count": int64(42),
		"ratio": 0.5,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected normalized value (-want +got):\n%s", diff)
	}
}

func TestNormalizeRejectsNonFiniteFloats(t *testing.T) {
	t.Parallel()

	if _, err := Normalize(map[string]any{"bad": math.NaN()}); err == nil {
		t.Fatalf("expected NaN payload to be rejected")
	}
	if _, err := Normalize([]any{math.Inf(1)}); err == nil {
		t.Fatalf("expected Inf payload to be rejected")
	}
}

func TestNormalizeRejectsNonStringMapKeys(t *testing.T) {
	t.Parallel()

	if _, err := Normalize(map[int]any{1: "one"}); err == nil {
		t.Fatalf("expected non-string map keys to be rejected")
	}
}

func TestNormalizeTypedCollections(t *testing.T) {
	t.Parallel()

	got, err := Normalize(map[string]string{"a": "x", "b": "y"})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	want := map[string]any{"a": "x", "b": "y"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected normalized value (-want +got):\n%s", diff)
	}

	gotSlice, err := Normalize([]string{"x", "y"})
	if err != nil {
		t.Fatalf("Normalize slice: %v", err)
	}
	if diff := cmp.Diff([]any{"x", "y"}, gotSlice); diff != "" {
		t.Fatalf("unexpected normalized slice (-want +got):\n%s", diff)
	}
}
