package clinic

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/careledger/careledger/internal/platform/audit"
)

type Service struct {
	repo     Repository
	recorder *audit.Recorder
}

func NewService(repo Repository, recorder *audit.Recorder) *Service {
	return &Service{repo: repo, recorder: recorder}
}

func (s *Service) CreateClinic(ctx context.Context, c *Clinic) error {
	if c.Name == "" {
		return fmt.Errorf("clinic name is required")
	}
	c.Active = true
	if err := s.repo.Create(ctx, c); err != nil {
		return err
	}
	_ = s.recorder.RecordCreate(ctx, "clinic", audit.WithResourceID(c.ID))
	return nil
}

func (s *Service) GetClinic(ctx context.Context, id uuid.UUID) (*Clinic, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateClinic(ctx context.Context, c *Clinic) error {
	before, err := s.repo.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return err
	}
	changes := audit.Diff(audit.AsMap(before), audit.AsMap(c))
	_ = s.recorder.RecordUpdate(ctx, "clinic",
		audit.WithResourceID(c.ID),
		audit.WithDetail(changes.AsDetail()))
	return nil
}

func (s *Service) ListClinics(ctx context.Context, limit, offset int) ([]*Clinic, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// DisplayName resolves a clinic id to its name for audit views.
func (s *Service) DisplayName(ctx context.Context, id uuid.UUID) (string, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return c.Name, nil
}
