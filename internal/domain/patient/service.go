package patient

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/careledger/careledger/internal/platform/audit"
)

// Service wraps the repository with validation and audit recording. Every
// mutation emits an audit event; updates carry a field-level diff of what
// changed, and an update that changes nothing is recorded without a detail
// payload.
type Service struct {
	repo     Repository
	recorder *audit.Recorder
}

func NewService(repo Repository, recorder *audit.Recorder) *Service {
	return &Service{repo: repo, recorder: recorder}
}

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if p.MRN == "" {
		return fmt.Errorf("mrn is required")
	}
	if p.FirstName == "" && p.LastName == "" {
		return fmt.Errorf("patient name is required")
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}
	_ = s.recorder.RecordCreate(ctx, "patient", audit.WithResourceID(p.ID))
	return nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	_ = s.recorder.RecordView(ctx, "patient", audit.WithResourceID(p.ID))
	return p, nil
}

func (s *Service) GetByMRN(ctx context.Context, mrn string) (*Patient, error) {
	p, err := s.repo.GetByMRN(ctx, mrn)
	if err != nil {
		return nil, err
	}
	_ = s.recorder.RecordView(ctx, "patient", audit.WithResourceID(p.ID))
	return p, nil
}

// UpdatePatient persists the new state and records which fields changed.
func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	before, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}
	changes := audit.Diff(audit.AsMap(before), audit.AsMap(p))
	_ = s.recorder.RecordUpdate(ctx, "patient",
		audit.WithResourceID(p.ID),
		audit.WithDetail(changes.AsDetail()))
	return nil
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.recorder.RecordDelete(ctx, "patient", audit.WithResourceID(id))
	return nil
}

func (s *Service) ListPatients(ctx context.Context, clinicID *uuid.UUID, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, clinicID, limit, offset)
}

// DisplayName resolves a patient id to the name shown in audit views.
func (s *Service) DisplayName(ctx context.Context, id uuid.UUID) (string, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return p.FullName(), nil
}
