package audit

import (
	"testing"
	"time"
)

func TestDiff_IdenticalRecords(t *testing.T) {
	rec := map[string]any{"a": 1, "b": "two", "c": []string{"x", "y"}}
	if changes := Diff(rec, rec); changes != nil {
		t.Errorf("expected nil for identical records, got %v", changes)
	}
}

func TestDiff_SingleFieldChange(t *testing.T) {
	before := map[string]any{"a": 1, "b": 2}
	after := map[string]any{"a": 1, "b": 3}

	changes := Diff(before, after)
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(changes))
	}
	ch, ok := changes["b"]
	if !ok {
		t.Fatal("expected change for field b")
	}
	if ch.Before != float64(2) || ch.After != float64(3) {
		t.Errorf("expected before=2 after=3, got %v/%v", ch.Before, ch.After)
	}
}

func TestDiff_ExcludesBookkeepingFields(t *testing.T) {
	now := time.Now()
	before := map[string]any{"id": "a", "created_at": now, "updated_at": now, "name": "x"}
	after := map[string]any{"id": "b", "created_at": now.Add(time.Hour), "updated_at": now.Add(time.Hour), "name": "x"}

	if changes := Diff(before, after); changes != nil {
		t.Errorf("bookkeeping fields must not be compared, got %v", changes)
	}
}

func TestDiff_NestedStructuralEquality(t *testing.T) {
	before := map[string]any{"address": map[string]any{"city": "Pune", "zip": "411001"}}
	after := map[string]any{"address": map[string]any{"zip": "411001", "city": "Pune"}}

	if changes := Diff(before, after); changes != nil {
		t.Errorf("structurally equal nested maps must not differ, got %v", changes)
	}
}

func TestDiff_NestedChange(t *testing.T) {
	before := map[string]any{"address": map[string]any{"city": "Pune"}}
	after := map[string]any{"address": map[string]any{"city": "Mumbai"}}

	changes := Diff(before, after)
	if _, ok := changes["address"]; !ok {
		t.Fatalf("expected change for address, got %v", changes)
	}
}

func TestDiff_AddedAndRemovedFields(t *testing.T) {
	before := map[string]any{"a": 1}
	after := map[string]any{"b": 2}

	changes := Diff(before, after)
	if len(changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(changes))
	}
	if ch := changes["a"]; ch.Before == nil || ch.After != nil {
		t.Errorf("removed field: expected before set, after nil, got %v", ch)
	}
	if ch := changes["b"]; ch.Before != nil || ch.After == nil {
		t.Errorf("added field: expected before nil, after set, got %v", ch)
	}
}

func TestDiff_NumericTypeNormalization(t *testing.T) {
	// int on one side, float64 (as after a JSON round-trip) on the other.
	before := map[string]any{"count": 5}
	after := map[string]any{"count": float64(5)}

	if changes := Diff(before, after); changes != nil {
		t.Errorf("expected numeric types to normalize equal, got %v", changes)
	}
}

func TestChanges_AsDetail(t *testing.T) {
	changes := Diff(map[string]any{"b": 2}, map[string]any{"b": 3})
	detail := changes.AsDetail()
	if detail == nil {
		t.Fatal("expected non-nil detail")
	}
	entry, ok := detail["b"].(map[string]any)
	if !ok {
		t.Fatalf("expected map entry for b, got %T", detail["b"])
	}
	if entry["before"] != float64(2) || entry["after"] != float64(3) {
		t.Errorf("unexpected detail entry: %v", entry)
	}

	var none Changes
	if none.AsDetail() != nil {
		t.Error("expected nil detail for empty change set")
	}
}
