package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Recorder persists immutable audit events. Recording is best-effort
// observability: a failed write is logged and returned as an error the caller
// may inspect, but the recorder never panics and callers are expected not to
// abort the primary operation on a recording failure.
type Recorder struct {
	repo   Repository
	logger zerolog.Logger
}

func NewRecorder(repo Repository, logger zerolog.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

// Option mutates the event before it is persisted.
type Option func(*Event)

// WithResourceID attaches the target resource identity.
func WithResourceID(id uuid.UUID) Option {
	return func(e *Event) { e.ResourceID = &id }
}

// WithDetail attaches a structured detail payload, e.g. a field diff.
// A nil map is ignored.
func WithDetail(detail map[string]any) Option {
	return func(e *Event) {
		if detail != nil {
			e.Detail = detail
		}
	}
}

// WithActor overrides the actor captured from the request context.
func WithActor(id uuid.UUID) Option {
	return func(e *Event) { e.UserID = &id }
}

// Record persists one audit event for the given action and resource type.
// The actor and transport origin are taken from the request metadata in ctx;
// a missing actor is recorded as a system action, and missing origin fields
// default to the unknown sentinel. The write never blocks the primary action:
// on failure the error is logged and returned for optional inspection.
func (r *Recorder) Record(ctx context.Context, action, resourceType string, opts ...Option) error {
	meta := MetaFromContext(ctx)
	event := &Event{
		UserID:       meta.ActorID,
		Action:       action,
		ResourceType: resourceType,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
	}
	for _, opt := range opts {
		opt(event)
	}

	if err := r.repo.Insert(ctx, event); err != nil {
		r.logger.Error().Err(err).
			Str("action", action).
			Str("resource_type", resourceType).
			Msg("audit write failed")
		return fmt.Errorf("audit: record %s %s: %w", action, resourceType, err)
	}
	return nil
}

func (r *Recorder) RecordCreate(ctx context.Context, resourceType string, opts ...Option) error {
	return r.Record(ctx, ActionCreate, resourceType, opts...)
}

func (r *Recorder) RecordUpdate(ctx context.Context, resourceType string, opts ...Option) error {
	return r.Record(ctx, ActionUpdate, resourceType, opts...)
}

func (r *Recorder) RecordDelete(ctx context.Context, resourceType string, opts ...Option) error {
	return r.Record(ctx, ActionDelete, resourceType, opts...)
}

func (r *Recorder) RecordView(ctx context.Context, resourceType string, opts ...Option) error {
	return r.Record(ctx, ActionView, resourceType, opts...)
}

func (r *Recorder) RecordLogin(ctx context.Context, opts ...Option) error {
	return r.Record(ctx, ActionLogin, "session", opts...)
}

func (r *Recorder) RecordLogout(ctx context.Context, opts ...Option) error {
	return r.Record(ctx, ActionLogout, "session", opts...)
}
