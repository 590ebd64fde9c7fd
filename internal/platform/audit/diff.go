package audit

import (
	"encoding/json"
	"reflect"
)

// Change holds the before and after values of a single field.
type Change struct {
	Before any `json:"before"`
	After  any `json:"after"`
}

// Changes maps field names to their before/after values.
type Changes map[string]Change

// Bookkeeping fields never compared by Diff.
var excludedFields = map[string]struct{}{
	"id":         {},
	"created_at": {},
	"updated_at": {},
}

// Diff computes the field-level delta between two versions of a record.
// Values are compared structurally after JSON normalization, so nested maps
// and slices compare by content. It returns nil, not an empty map, when no
// field differs; callers use that to decide whether an audit event needs a
// detail payload at all.
func Diff(before, after map[string]any) Changes {
	keys := make(map[string]struct{}, len(before)+len(after))
	for k := range before {
		keys[k] = struct{}{}
	}
	for k := range after {
		keys[k] = struct{}{}
	}

	var changes Changes
	for k := range keys {
		if _, skip := excludedFields[k]; skip {
			continue
		}
		b, a := normalize(before[k]), normalize(after[k])
		if reflect.DeepEqual(b, a) {
			continue
		}
		if changes == nil {
			changes = make(Changes)
		}
		changes[k] = Change{Before: b, After: a}
	}
	return changes
}

// AsDetail converts the change set into an audit detail payload, or nil when
// there are no changes.
func (c Changes) AsDetail() map[string]any {
	if len(c) == 0 {
		return nil
	}
	detail := make(map[string]any, len(c))
	for k, v := range c {
		detail[k] = map[string]any{"before": v.Before, "after": v.After}
	}
	return detail
}

// AsMap converts a struct into the map form Diff operates on, keyed by its
// JSON field names. It returns nil for values that do not marshal to a JSON
// object.
func AsMap(v any) map[string]any {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

// normalize round-trips a value through JSON so that structurally equal
// values of different Go types (int vs float64, struct vs map) compare equal.
func normalize(v any) any {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}
