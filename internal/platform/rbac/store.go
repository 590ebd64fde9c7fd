package rbac

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrRoleNotFound is returned when a role name does not resolve.
var ErrRoleNotFound = errors.New("rbac: role not found")

// ErrPermissionNotFound is returned when a permission name does not resolve.
var ErrPermissionNotFound = errors.New("rbac: permission not found")

// Store defines the persistence interface for roles, permissions, and
// role assignments.
type Store interface {
	// RolesForUser returns the ids of all roles currently assigned to the user.
	RolesForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	// HasAnyPermission reports whether at least one of the given roles grants
	// a permission matching (resource, action). Pure existence check.
	HasAnyPermission(ctx context.Context, roleIDs []uuid.UUID, resource, action string) (bool, error)

	RoleByName(ctx context.Context, name string) (*Role, error)
	CreateRole(ctx context.Context, role *Role) error
	ListRoles(ctx context.Context) ([]*Role, error)

	PermissionByName(ctx context.Context, name string) (*Permission, error)
	CreatePermission(ctx context.Context, perm *Permission) error
	ListPermissions(ctx context.Context) ([]*Permission, error)
	GrantPermission(ctx context.Context, roleID, permissionID uuid.UUID) error
	RevokePermission(ctx context.Context, roleID, permissionID uuid.UUID) error

	AssignmentExists(ctx context.Context, userID, roleID uuid.UUID) (bool, error)
	CreateAssignment(ctx context.Context, a *Assignment) error
	DeleteAssignment(ctx context.Context, userID, roleID uuid.UUID) error
	AssignmentsForUser(ctx context.Context, userID uuid.UUID) ([]*Assignment, error)
}
