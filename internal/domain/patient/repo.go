package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("patient not found")

// Repository is the storage contract for patient records.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByMRN(ctx context.Context, mrn string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, clinicID *uuid.UUID, limit, offset int) ([]*Patient, int, error)
}
