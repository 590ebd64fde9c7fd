package rbac

import (
	"time"

	"github.com/google/uuid"
)

// Role maps to the role table. Roles are seeded administratively and are
// referenced by assignments; they are never hard-deleted while referenced.
type Role struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Permission maps to the permission table. The (Resource, Action) pair is the
// lookup key during evaluation; Name is unique.
type Permission struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Resource    string    `db:"resource" json:"resource"`
	Action      string    `db:"action" json:"action"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// RolePermission maps to the role_permission join table.
type RolePermission struct {
	RoleID       uuid.UUID `db:"role_id" json:"role_id"`
	PermissionID uuid.UUID `db:"permission_id" json:"permission_id"`
}

// Assignment maps to the user_role_assignment table. A user holds a given
// role at most once.
type Assignment struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	UserID     uuid.UUID  `db:"user_id" json:"user_id"`
	RoleID     uuid.UUID  `db:"role_id" json:"role_id"`
	AssignedBy *uuid.UUID `db:"assigned_by" json:"assigned_by,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}
