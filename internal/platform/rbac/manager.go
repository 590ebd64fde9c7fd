package rbac

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrCompensationFailed reports that a role swap failed and the attempt to
// restore the previously held role also failed, leaving the user without
// either role. It always wraps the error from the failed assign step.
var ErrCompensationFailed = errors.New("rbac: role swap compensation failed")

// Manager attaches and detaches roles. Both operations are idempotent:
// assigning a held role or removing a role that was never assigned succeeds
// without touching the store.
type Manager struct {
	store  Store
	logger zerolog.Logger
}

func NewManager(store Store, logger zerolog.Logger) *Manager {
	return &Manager{store: store, logger: logger}
}

// AssignRole grants roleName to the user. Returns ErrRoleNotFound when the
// role name does not resolve.
func (m *Manager) AssignRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	return m.assignRole(ctx, userID, roleName, nil)
}

// AssignRoleBy grants roleName to the user, recording who granted it.
func (m *Manager) AssignRoleBy(ctx context.Context, userID uuid.UUID, roleName string, grantedBy *uuid.UUID) error {
	return m.assignRole(ctx, userID, roleName, grantedBy)
}

func (m *Manager) assignRole(ctx context.Context, userID uuid.UUID, roleName string, grantedBy *uuid.UUID) error {
	role, err := m.store.RoleByName(ctx, roleName)
	if err != nil {
		return fmt.Errorf("rbac: resolve role %q: %w", roleName, err)
	}

	exists, err := m.store.AssignmentExists(ctx, userID, role.ID)
	if err != nil {
		return fmt.Errorf("rbac: check assignment: %w", err)
	}
	if exists {
		return nil
	}

	a := &Assignment{UserID: userID, RoleID: role.ID, AssignedBy: grantedBy}
	if err := m.store.CreateAssignment(ctx, a); err != nil {
		return fmt.Errorf("rbac: create assignment: %w", err)
	}
	return nil
}

// RemoveRole revokes roleName from the user. Removing a role that is not
// assigned, or does not exist, is not an error.
func (m *Manager) RemoveRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	role, err := m.store.RoleByName(ctx, roleName)
	if errors.Is(err, ErrRoleNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("rbac: resolve role %q: %w", roleName, err)
	}

	if err := m.store.DeleteAssignment(ctx, userID, role.ID); err != nil {
		return fmt.Errorf("rbac: delete assignment: %w", err)
	}
	return nil
}

// ChangeRole swaps oldRole for newRole as a two-step saga: remove then assign.
// The steps are not atomic; if the assign fails the manager re-assigns the old
// role before reporting failure. When that compensation also fails the
// returned error matches both ErrCompensationFailed and the assign error, and
// the user may be left with neither role.
func (m *Manager) ChangeRole(ctx context.Context, userID uuid.UUID, oldRole, newRole string) error {
	if err := m.RemoveRole(ctx, userID, oldRole); err != nil {
		return fmt.Errorf("rbac: change role: remove %q: %w", oldRole, err)
	}

	assignErr := m.AssignRole(ctx, userID, newRole)
	if assignErr == nil {
		return nil
	}

	if compErr := m.AssignRole(ctx, userID, oldRole); compErr != nil {
		m.logger.Error().Err(compErr).
			Str("user_id", userID.String()).
			Str("old_role", oldRole).
			Str("new_role", newRole).
			Msg("role swap compensation failed")
		return fmt.Errorf("%w: restoring %q after assign of %q failed: %w",
			ErrCompensationFailed, oldRole, newRole, assignErr)
	}

	return fmt.Errorf("rbac: change role: assign %q (old role restored): %w", newRole, assignErr)
}
