package audit

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const requestMetaKey contextKey = "audit_request_meta"

// RequestMeta carries the per-request context the recorder captures: the
// acting identity and the transport origin. A nil ActorID is legitimate and
// marks a system-initiated action.
type RequestMeta struct {
	ActorID   *uuid.UUID
	IPAddress string
	UserAgent string
}

// WithRequestMeta returns a context carrying the given request metadata.
// The serving layer sets this once per request; the recorder and permission
// callers read it instead of any ambient global.
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey, meta)
}

// MetaFromContext returns the request metadata from ctx. When absent, or when
// individual fields are empty, the origin fields default to UnknownOrigin and
// the actor is nil. It never fails.
func MetaFromContext(ctx context.Context) RequestMeta {
	meta, _ := ctx.Value(requestMetaKey).(RequestMeta)
	if meta.IPAddress == "" {
		meta.IPAddress = UnknownOrigin
	}
	if meta.UserAgent == "" {
		meta.UserAgent = UnknownOrigin
	}
	return meta
}
