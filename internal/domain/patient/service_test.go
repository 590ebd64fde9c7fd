package patient

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/careledger/careledger/internal/platform/audit"
)

type mockRepo struct {
	patients map[uuid.UUID]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	m.patients[p.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) GetByMRN(_ context.Context, mrn string) (*Patient, error) {
	for _, p := range m.patients {
		if p.MRN == mrn {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	if _, ok := m.patients[p.ID]; !ok {
		return ErrNotFound
	}
	cp := *p
	cp.UpdatedAt = time.Now()
	m.patients[p.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.patients[id]; !ok {
		return ErrNotFound
	}
	delete(m.patients, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, clinicID *uuid.UUID, limit, offset int) ([]*Patient, int, error) {
	var out []*Patient
	for _, p := range m.patients {
		if clinicID != nil && (p.ClinicID == nil || *p.ClinicID != *clinicID) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, len(out), nil
}

type memAuditRepo struct {
	events []*audit.Event
}

func (m *memAuditRepo) Insert(_ context.Context, e *audit.Event) error {
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	m.events = append(m.events, e)
	return nil
}

func (m *memAuditRepo) GetByID(_ context.Context, id uuid.UUID) (*audit.Event, error) {
	for _, e := range m.events {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, audit.ErrEventNotFound
}

func (m *memAuditRepo) Search(_ context.Context, _ audit.Filter, _, _ int) ([]*audit.Event, int, error) {
	return m.events, len(m.events), nil
}

func newTestService() (*Service, *mockRepo, *memAuditRepo) {
	repo := newMockRepo()
	auditRepo := &memAuditRepo{}
	recorder := audit.NewRecorder(auditRepo, zerolog.Nop())
	return NewService(repo, recorder), repo, auditRepo
}

func TestCreatePatient_Audited(t *testing.T) {
	svc, _, auditRepo := newTestService()

	p := &Patient{MRN: "MRN-001", FirstName: "Asha", LastName: "Rao"}
	if err := svc.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Fatal("expected id to be assigned")
	}

	if len(auditRepo.events) != 1 {
		t.Fatalf("expected 1 audit event, got %d", len(auditRepo.events))
	}
	e := auditRepo.events[0]
	if e.Action != audit.ActionCreate || e.ResourceType != "patient" {
		t.Errorf("unexpected event %s %s", e.Action, e.ResourceType)
	}
	if e.ResourceID == nil || *e.ResourceID != p.ID {
		t.Error("expected event to reference the created patient")
	}
}

func TestCreatePatient_MRNRequired(t *testing.T) {
	svc, _, auditRepo := newTestService()

	err := svc.CreatePatient(context.Background(), &Patient{FirstName: "Asha"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(auditRepo.events) != 0 {
		t.Error("rejected create must not be audited")
	}
}

func TestUpdatePatient_DiffInDetail(t *testing.T) {
	svc, _, auditRepo := newTestService()

	p := &Patient{MRN: "MRN-002", FirstName: "Ben", LastName: "Okafor", Phone: "555-0100"}
	if err := svc.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated := *p
	updated.Phone = "555-0199"
	if err := svc.UpdatePatient(context.Background(), &updated); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	e := auditRepo.events[len(auditRepo.events)-1]
	if e.Action != audit.ActionUpdate {
		t.Fatalf("expected update event, got %s", e.Action)
	}
	change, ok := e.Detail["phone"].(map[string]any)
	if !ok {
		t.Fatalf("expected phone change in detail, got %v", e.Detail)
	}
	if change["before"] != "555-0100" || change["after"] != "555-0199" {
		t.Errorf("unexpected change payload %v", change)
	}
	if _, ok := e.Detail["first_name"]; ok {
		t.Error("unchanged field must not appear in detail")
	}
}

func TestUpdatePatient_NoChangeNoDetail(t *testing.T) {
	svc, _, auditRepo := newTestService()

	p := &Patient{MRN: "MRN-003", FirstName: "Cara", LastName: "Lindqvist"}
	if err := svc.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	same := *p
	if err := svc.UpdatePatient(context.Background(), &same); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	e := auditRepo.events[len(auditRepo.events)-1]
	if e.Action != audit.ActionUpdate {
		t.Fatalf("expected update event, got %s", e.Action)
	}
	if e.Detail != nil {
		t.Errorf("no-op update must carry no detail, got %v", e.Detail)
	}
}

func TestUpdatePatient_NotFound(t *testing.T) {
	svc, _, auditRepo := newTestService()

	err := svc.UpdatePatient(context.Background(), &Patient{ID: uuid.New(), MRN: "MRN-404"})
	if err == nil {
		t.Fatal("expected not found error")
	}
	if len(auditRepo.events) != 0 {
		t.Error("failed update must not be audited")
	}
}

func TestGetPatient_RecordsView(t *testing.T) {
	svc, _, auditRepo := newTestService()

	p := &Patient{MRN: "MRN-004", FirstName: "Dev", LastName: "Sharma"}
	if err := svc.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.GetPatient(context.Background(), p.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e := auditRepo.events[len(auditRepo.events)-1]
	if e.Action != audit.ActionView || e.ResourceType != "patient" {
		t.Errorf("expected view event, got %s %s", e.Action, e.ResourceType)
	}
}

func TestFullName(t *testing.T) {
	cases := []struct {
		first, last, want string
	}{
		{"Asha", "Rao", "Asha Rao"},
		{"", "Rao", "Rao"},
		{"Asha", "", "Asha"},
	}
	for _, tc := range cases {
		p := &Patient{FirstName: tc.first, LastName: tc.last}
		if got := p.FullName(); got != tc.want {
			t.Errorf("FullName(%q, %q) = %q, want %q", tc.first, tc.last, got, tc.want)
		}
	}
}
