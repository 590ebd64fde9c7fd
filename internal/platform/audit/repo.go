package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrEventNotFound = errors.New("audit event not found")

// Filter selects audit events. All fields are optional; set fields combine
// conjunctively. From and To bound CreatedAt inclusively.
type Filter struct {
	UserID       *uuid.UUID
	Action       string
	ResourceType string
	ResourceID   *uuid.UUID
	From         *time.Time
	To           *time.Time
}

// Repository defines the persistence interface for audit events. The write
// side is insert-only.
type Repository interface {
	Insert(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
	// Search returns matching events newest-first plus the total count of the
	// filtered set before pagination.
	Search(ctx context.Context, f Filter, limit, offset int) ([]*Event, int, error)
}
