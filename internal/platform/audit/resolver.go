package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// NameLookup maps a resource id to a human-readable label for one resource
// type.
type NameLookup func(ctx context.Context, id uuid.UUID) (string, error)

// ResourceNameResolver maps (resourceType, id) pairs to display labels for
// the audit UI. Unrecognized types and failed lookups fall back to a generic
// "<type> #<short-id>" label; Resolve never fails.
type ResourceNameResolver struct {
	lookups map[string]NameLookup
}

func NewResourceNameResolver() *ResourceNameResolver {
	return &ResourceNameResolver{lookups: make(map[string]NameLookup)}
}

// Register installs the lookup for a resource type, replacing any previous
// one.
func (r *ResourceNameResolver) Register(resourceType string, lookup NameLookup) {
	r.lookups[resourceType] = lookup
}

// Resolve returns a display label for the resource.
func (r *ResourceNameResolver) Resolve(ctx context.Context, resourceType string, id uuid.UUID) string {
	if lookup, ok := r.lookups[resourceType]; ok {
		if name, err := lookup(ctx, id); err == nil && name != "" {
			return name
		}
	}
	return fmt.Sprintf("%s #%s", resourceType, shortID(id))
}

func shortID(id uuid.UUID) string {
	s := id.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}
