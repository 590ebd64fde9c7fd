package identity

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/careledger/careledger/internal/platform/audit"
	"github.com/careledger/careledger/internal/platform/rbac"
)

// Service manages system users and their role assignments. Role mutations go
// through the rbac manager and are recorded in the audit trail; a failed
// audit write never rolls back the role change.
type Service struct {
	repo     UserRepository
	roles    *rbac.Manager
	store    rbac.Store
	recorder *audit.Recorder
}

func NewService(repo UserRepository, roles *rbac.Manager, store rbac.Store, recorder *audit.Recorder) *Service {
	return &Service{repo: repo, roles: roles, store: store, recorder: recorder}
}

func (s *Service) CreateUser(ctx context.Context, user *User) error {
	if user.Username == "" {
		return fmt.Errorf("identity: username is required")
	}
	if user.Status == "" {
		user.Status = "active"
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return fmt.Errorf("identity: create user: %w", err)
	}
	_ = s.recorder.RecordCreate(ctx, "user", audit.WithResourceID(user.ID))
	return nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// GetUserWithRoles returns the user joined with their current role names.
func (s *Service) GetUserWithRoles(ctx context.Context, id uuid.UUID) (*UserWithRoles, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	out := &UserWithRoles{User: *user}
	assignments, err := s.store.AssignmentsForUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("identity: load assignments: %w", err)
	}
	roles, err := s.store.ListRoles(ctx)
	if err != nil {
		return nil, fmt.Errorf("identity: load roles: %w", err)
	}
	byID := make(map[uuid.UUID]string, len(roles))
	for _, r := range roles {
		byID[r.ID] = r.Name
	}
	for _, a := range assignments {
		if name, ok := byID[a.RoleID]; ok {
			out.Roles = append(out.Roles, name)
		}
	}
	return out, nil
}

// AssignRole grants roleName to the user and records the grant.
func (s *Service) AssignRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	if err := s.roles.AssignRole(ctx, userID, roleName); err != nil {
		return err
	}
	_ = s.recorder.Record(ctx, "assign_role", "user",
		audit.WithResourceID(userID),
		audit.WithDetail(map[string]any{"role": roleName}))
	return nil
}

// RevokeRole removes roleName from the user and records the revocation.
func (s *Service) RevokeRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	if err := s.roles.RemoveRole(ctx, userID, roleName); err != nil {
		return err
	}
	_ = s.recorder.Record(ctx, "revoke_role", "user",
		audit.WithResourceID(userID),
		audit.WithDetail(map[string]any{"role": roleName}))
	return nil
}

// ChangeRole swaps oldRole for newRole. The audit detail records both sides
// of the swap; on failure the error carries whether the old role was
// restored.
func (s *Service) ChangeRole(ctx context.Context, userID uuid.UUID, oldRole, newRole string) error {
	if err := s.roles.ChangeRole(ctx, userID, oldRole, newRole); err != nil {
		return err
	}
	_ = s.recorder.Record(ctx, "change_role", "user",
		audit.WithResourceID(userID),
		audit.WithDetail(map[string]any{
			"role": map[string]any{"before": oldRole, "after": newRole},
		}))
	return nil
}

// ProfilesByIDs implements audit.ProfileLookup against the user table.
// Unknown ids are omitted; the audit layer substitutes empty profiles.
func (s *Service) ProfilesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]audit.Profile, error) {
	users, err := s.repo.ByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("identity: profiles by ids: %w", err)
	}
	out := make(map[uuid.UUID]audit.Profile, len(users))
	for _, u := range users {
		out[u.ID] = audit.Profile{Name: u.DisplayName, Email: u.Email}
	}
	return out, nil
}

// DisplayName resolves a user id to its display name for the audit
// resource-name resolver.
func (s *Service) DisplayName(ctx context.Context, id uuid.UUID) (string, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return u.DisplayName, nil
}
