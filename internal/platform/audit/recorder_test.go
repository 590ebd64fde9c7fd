package audit

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// -- Mock Repository --

type mockRepo struct {
	events    []*Event
	insertErr error
	searchErr error
}

func (m *mockRepo) Insert(_ context.Context, event *Event) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	event.ID = uuid.New()
	event.CreatedAt = time.Now().UTC()
	m.events = append(m.events, event)
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Event, error) {
	for _, e := range m.events {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, errors.New("not found")
}

func (m *mockRepo) Search(_ context.Context, f Filter, limit, offset int) ([]*Event, int, error) {
	if m.searchErr != nil {
		return nil, 0, m.searchErr
	}
	var filtered []*Event
	for _, e := range m.events {
		if f.UserID != nil && (e.UserID == nil || *e.UserID != *f.UserID) {
			continue
		}
		if f.Action != "" && e.Action != f.Action {
			continue
		}
		if f.ResourceType != "" && e.ResourceType != f.ResourceType {
			continue
		}
		if f.ResourceID != nil && (e.ResourceID == nil || *e.ResourceID != *f.ResourceID) {
			continue
		}
		if f.From != nil && e.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && e.CreatedAt.After(*f.To) {
			continue
		}
		filtered = append(filtered, e)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})
	total := len(filtered)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return filtered[offset:end], total, nil
}

// -- Recorder --

func TestRecord_CapturesRequestMeta(t *testing.T) {
	repo := &mockRepo{}
	rec := NewRecorder(repo, zerolog.Nop())

	actor := uuid.New()
	ctx := WithRequestMeta(context.Background(), RequestMeta{
		ActorID:   &actor,
		IPAddress: "10.0.0.1",
		UserAgent: "careledger-web/1.0",
	})

	if err := rec.RecordCreate(ctx, "patient", WithResourceID(uuid.New())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(repo.events))
	}
	e := repo.events[0]
	if e.UserID == nil || *e.UserID != actor {
		t.Error("expected actor id captured from context")
	}
	if e.IPAddress != "10.0.0.1" || e.UserAgent != "careledger-web/1.0" {
		t.Errorf("unexpected origin: %s / %s", e.IPAddress, e.UserAgent)
	}
	if e.Action != ActionCreate || e.ResourceType != "patient" {
		t.Errorf("unexpected action/resource: %s/%s", e.Action, e.ResourceType)
	}
}

func TestRecord_SystemActionWithoutActor(t *testing.T) {
	repo := &mockRepo{}
	rec := NewRecorder(repo, zerolog.Nop())

	if err := rec.Record(context.Background(), "retention-sweep", "audit_event"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e := repo.events[0]
	if e.UserID != nil {
		t.Error("expected nil actor for system action")
	}
	if e.IPAddress != UnknownOrigin || e.UserAgent != UnknownOrigin {
		t.Errorf("expected unknown origin sentinels, got %s / %s", e.IPAddress, e.UserAgent)
	}
}

func TestRecord_WriteFailureReturnsErrorWithoutPanic(t *testing.T) {
	repo := &mockRepo{insertErr: errors.New("disk full")}
	rec := NewRecorder(repo, zerolog.Nop())

	err := rec.RecordDelete(context.Background(), "patient")
	if err == nil {
		t.Fatal("expected error result on write failure")
	}
	if !errors.Is(err, repo.insertErr) {
		t.Errorf("expected wrapped insert error, got %v", err)
	}
}

func TestRecord_TimestampsNonDecreasing(t *testing.T) {
	repo := &mockRepo{}
	rec := NewRecorder(repo, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := rec.RecordView(ctx, "patient"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	for i := 1; i < len(repo.events); i++ {
		if repo.events[i].CreatedAt.Before(repo.events[i-1].CreatedAt) {
			t.Errorf("timestamp %d decreased relative to %d", i, i-1)
		}
	}
}

func TestRecord_DetailPayload(t *testing.T) {
	repo := &mockRepo{}
	rec := NewRecorder(repo, zerolog.Nop())

	changes := Diff(map[string]any{"phone": "111"}, map[string]any{"phone": "222"})
	err := rec.RecordUpdate(context.Background(), "patient", WithDetail(changes.AsDetail()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.events[0].Detail == nil {
		t.Fatal("expected detail payload")
	}
	if _, ok := repo.events[0].Detail["phone"]; !ok {
		t.Error("expected phone change in detail")
	}
}

func TestRecord_NilDetailOmitted(t *testing.T) {
	repo := &mockRepo{}
	rec := NewRecorder(repo, zerolog.Nop())

	var none Changes
	if err := rec.RecordUpdate(context.Background(), "patient", WithDetail(none.AsDetail())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.events[0].Detail != nil {
		t.Error("expected no detail when nothing changed")
	}
}
