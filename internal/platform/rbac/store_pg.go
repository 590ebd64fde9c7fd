package rbac

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careledger/careledger/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// StorePG is the PostgreSQL implementation of Store.
type StorePG struct {
	pool *pgxpool.Pool
}

func NewStorePG(pool *pgxpool.Pool) *StorePG {
	return &StorePG{pool: pool}
}

func (s *StorePG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return s.pool
}

func (s *StorePG) RolesForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.conn(ctx).Query(ctx,
		`SELECT role_id FROM user_role_assignment WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *StorePG) HasAnyPermission(ctx context.Context, roleIDs []uuid.UUID, resource, action string) (bool, error) {
	if len(roleIDs) == 0 {
		return false, nil
	}
	var exists bool
	err := s.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM role_permission rp
			JOIN permission p ON p.id = rp.permission_id
			WHERE rp.role_id = ANY($1) AND p.resource = $2 AND p.action = $3
		)`, roleIDs, resource, action).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (s *StorePG) RoleByName(ctx context.Context, name string) (*Role, error) {
	var r Role
	err := s.conn(ctx).QueryRow(ctx,
		`SELECT id, name, description, created_at FROM role WHERE name = $1`, name).
		Scan(&r.ID, &r.Name, &r.Description, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRoleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *StorePG) CreateRole(ctx context.Context, role *Role) error {
	return s.conn(ctx).QueryRow(ctx,
		`INSERT INTO role (name, description) VALUES ($1, $2) RETURNING id, created_at`,
		role.Name, role.Description).Scan(&role.ID, &role.CreatedAt)
}

func (s *StorePG) ListRoles(ctx context.Context) ([]*Role, error) {
	rows, err := s.conn(ctx).Query(ctx,
		`SELECT id, name, description, created_at FROM role ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []*Role
	for rows.Next() {
		var r Role
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.CreatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, &r)
	}
	return roles, rows.Err()
}

func (s *StorePG) PermissionByName(ctx context.Context, name string) (*Permission, error) {
	var p Permission
	err := s.conn(ctx).QueryRow(ctx,
		`SELECT id, name, description, resource, action, created_at FROM permission WHERE name = $1`, name).
		Scan(&p.ID, &p.Name, &p.Description, &p.Resource, &p.Action, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPermissionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *StorePG) CreatePermission(ctx context.Context, perm *Permission) error {
	return s.conn(ctx).QueryRow(ctx,
		`INSERT INTO permission (name, description, resource, action)
		 VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		perm.Name, perm.Description, perm.Resource, perm.Action).
		Scan(&perm.ID, &perm.CreatedAt)
}

func (s *StorePG) ListPermissions(ctx context.Context) ([]*Permission, error) {
	rows, err := s.conn(ctx).Query(ctx,
		`SELECT id, name, description, resource, action, created_at FROM permission ORDER BY resource, action`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []*Permission
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Resource, &p.Action, &p.CreatedAt); err != nil {
			return nil, err
		}
		perms = append(perms, &p)
	}
	return perms, rows.Err()
}

func (s *StorePG) GrantPermission(ctx context.Context, roleID, permissionID uuid.UUID) error {
	_, err := s.conn(ctx).Exec(ctx,
		`INSERT INTO role_permission (role_id, permission_id) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`, roleID, permissionID)
	return err
}

func (s *StorePG) RevokePermission(ctx context.Context, roleID, permissionID uuid.UUID) error {
	_, err := s.conn(ctx).Exec(ctx,
		`DELETE FROM role_permission WHERE role_id = $1 AND permission_id = $2`,
		roleID, permissionID)
	return err
}

func (s *StorePG) AssignmentExists(ctx context.Context, userID, roleID uuid.UUID) (bool, error) {
	var exists bool
	err := s.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_role_assignment WHERE user_id = $1 AND role_id = $2)`,
		userID, roleID).Scan(&exists)
	return exists, err
}

func (s *StorePG) CreateAssignment(ctx context.Context, a *Assignment) error {
	return s.conn(ctx).QueryRow(ctx,
		`INSERT INTO user_role_assignment (user_id, role_id, assigned_by)
		 VALUES ($1, $2, $3) RETURNING id, created_at`,
		a.UserID, a.RoleID, a.AssignedBy).Scan(&a.ID, &a.CreatedAt)
}

func (s *StorePG) DeleteAssignment(ctx context.Context, userID, roleID uuid.UUID) error {
	_, err := s.conn(ctx).Exec(ctx,
		`DELETE FROM user_role_assignment WHERE user_id = $1 AND role_id = $2`,
		userID, roleID)
	return err
}

func (s *StorePG) AssignmentsForUser(ctx context.Context, userID uuid.UUID) ([]*Assignment, error) {
	rows, err := s.conn(ctx).Query(ctx,
		`SELECT id, user_id, role_id, assigned_by, created_at
		 FROM user_role_assignment WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Assignment
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.ID, &a.UserID, &a.RoleID, &a.AssignedBy, &a.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &a)
	}
	return items, rows.Err()
}
