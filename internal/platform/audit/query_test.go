package audit

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type mockProfiles struct {
	profiles map[uuid.UUID]Profile
	err      error
}

func (m *mockProfiles) ProfilesByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]Profile, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[uuid.UUID]Profile)
	for _, id := range ids {
		if p, ok := m.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func seedEvents(repo *mockRepo, n int, userID *uuid.UUID) {
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < n; i++ {
		repo.events = append(repo.events, &Event{
			ID:           uuid.New(),
			UserID:       userID,
			Action:       ActionView,
			ResourceType: "patient",
			IPAddress:    "10.0.0.1",
			UserAgent:    "test",
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		})
	}
}

func TestQuery_NewestFirst(t *testing.T) {
	repo := &mockRepo{}
	seedEvents(repo, 5, nil)
	svc := NewQueryService(repo, &mockProfiles{}, zerolog.Nop())

	page, err := svc.Query(context.Background(), Filter{}, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(page.Events); i++ {
		if page.Events[i].CreatedAt.After(page.Events[i-1].CreatedAt) {
			t.Error("expected newest-first ordering")
		}
	}
}

func TestQuery_Pagination(t *testing.T) {
	repo := &mockRepo{}
	seedEvents(repo, 25, nil)
	svc := NewQueryService(repo, &mockProfiles{}, zerolog.Nop())

	page, err := svc.Query(context.Background(), Filter{}, 10, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 25 {
		t.Errorf("expected total 25 before pagination, got %d", page.Total)
	}
	if len(page.Events) != 10 {
		t.Fatalf("expected 10 events, got %d", len(page.Events))
	}
	// Events 11-20 by recency: the newest is index 0, so offset 10 starts at
	// the 11th newest.
	newest := repo.events[len(repo.events)-1].CreatedAt
	want := newest.Add(-10 * time.Minute)
	if !page.Events[0].CreatedAt.Equal(want) {
		t.Errorf("expected page to start at 11th newest event, got %v want %v",
			page.Events[0].CreatedAt, want)
	}
}

func TestQuery_TimeRangeInclusive(t *testing.T) {
	repo := &mockRepo{}
	seedEvents(repo, 10, nil)
	svc := NewQueryService(repo, &mockProfiles{}, zerolog.Nop())

	from := repo.events[2].CreatedAt
	to := repo.events[6].CreatedAt
	page, err := svc.Query(context.Background(), Filter{From: &from, To: &to}, 100, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 5 {
		t.Errorf("expected 5 events in inclusive range, got %d", page.Total)
	}
	for _, e := range page.Events {
		if e.CreatedAt.Before(from) || e.CreatedAt.After(to) {
			t.Errorf("event %v outside range [%v, %v]", e.CreatedAt, from, to)
		}
	}
}

func TestQuery_ActorEnrichment(t *testing.T) {
	repo := &mockRepo{}
	known := uuid.New()
	unknown := uuid.New()
	seedEvents(repo, 1, &known)
	seedEvents(repo, 1, &unknown)
	profiles := &mockProfiles{profiles: map[uuid.UUID]Profile{
		known: {Name: "Asha Rao", Email: "asha@clinic.example"},
	}}
	svc := NewQueryService(repo, profiles, zerolog.Nop())

	page, err := svc.Query(context.Background(), Filter{}, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(page.Events))
	}

	byActor := make(map[uuid.UUID]*EnrichedEvent)
	for _, e := range page.Events {
		byActor[*e.UserID] = e
	}
	if byActor[known].ActorName != "Asha Rao" {
		t.Errorf("expected enriched name, got %q", byActor[known].ActorName)
	}
	if byActor[unknown].ActorName != "" {
		t.Errorf("expected empty profile for unknown actor, got %q", byActor[unknown].ActorName)
	}
}

func TestQuery_EnrichmentFaultDegrades(t *testing.T) {
	repo := &mockRepo{}
	actor := uuid.New()
	seedEvents(repo, 3, &actor)
	svc := NewQueryService(repo, &mockProfiles{err: errors.New("profile store down")}, zerolog.Nop())

	page, err := svc.Query(context.Background(), Filter{}, 10, 0)
	if err != nil {
		t.Fatalf("enrichment fault must not fail the query: %v", err)
	}
	if len(page.Events) != 3 {
		t.Errorf("expected all events despite enrichment fault, got %d", len(page.Events))
	}
}

func TestQuery_ConjunctiveFilters(t *testing.T) {
	repo := &mockRepo{}
	actor := uuid.New()
	seedEvents(repo, 3, &actor)
	repo.events[0].Action = ActionDelete
	seedEvents(repo, 2, nil)
	svc := NewQueryService(repo, &mockProfiles{}, zerolog.Nop())

	page, err := svc.Query(context.Background(),
		Filter{UserID: &actor, Action: ActionView}, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 2 {
		t.Errorf("expected 2 events matching both filters, got %d", page.Total)
	}
}

func TestResolver_RegisteredLookup(t *testing.T) {
	r := NewResourceNameResolver()
	r.Register("patient", func(_ context.Context, id uuid.UUID) (string, error) {
		return "Asha Rao", nil
	})

	if got := r.Resolve(context.Background(), "patient", uuid.New()); got != "Asha Rao" {
		t.Errorf("expected registered lookup result, got %q", got)
	}
}

func TestResolver_FallbackLabel(t *testing.T) {
	r := NewResourceNameResolver()
	r.Register("patient", func(_ context.Context, id uuid.UUID) (string, error) {
		return "", errors.New("not found")
	})
	id := uuid.New()

	want := fmt.Sprintf("patient #%s", id.String()[:8])
	if got := r.Resolve(context.Background(), "patient", id); got != want {
		t.Errorf("expected fallback %q, got %q", want, got)
	}

	want = fmt.Sprintf("invoice #%s", id.String()[:8])
	if got := r.Resolve(context.Background(), "invoice", id); got != want {
		t.Errorf("expected fallback for unregistered type %q, got %q", want, got)
	}
}
