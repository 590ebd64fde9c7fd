package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the persistence interface for system users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Update(ctx context.Context, user *User) error
	List(ctx context.Context, limit, offset int) ([]*User, int, error)
	// ByIDs returns the users matching the given ids; unknown ids are simply
	// absent from the result.
	ByIDs(ctx context.Context, ids []uuid.UUID) ([]*User, error)
}
