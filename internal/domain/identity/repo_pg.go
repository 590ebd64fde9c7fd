package identity

import (
	"context"
	"fmt"

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

type UserRepoPG struct {
	pool *pgxpool.Pool
}

func NewUserRepoPG(pool *pgxpool.Pool) *UserRepoPG {
	return &UserRepoPG{pool: pool}
}

func (r *UserRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const userCols = `id, username, display_name, email, status, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.DisplayName, &u.Email, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	return &u, err
}

func (r *UserRepoPG) Create(ctx context.Context, user *User) error {
	return r.conn(ctx).QueryRow(ctx,
		`INSERT INTO system_user (username, display_name, email, status)
		 VALUES ($1, $2, $3, $4) RETURNING id, created_at, updated_at`,
		user.Username, user.DisplayName, user.Email, user.Status).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *UserRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	q := fmt.Sprintf("SELECT %s FROM system_user WHERE id = $1", userCols)
	return scanUser(r.conn(ctx).QueryRow(ctx, q, id))
}

func (r *UserRepoPG) GetByUsername(ctx context.Context, username string) (*User, error) {
	q := fmt.Sprintf("SELECT %s FROM system_user WHERE username = $1", userCols)
	return scanUser(r.conn(ctx).QueryRow(ctx, q, username))
}

func (r *UserRepoPG) Update(ctx context.Context, user *User) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE system_user SET display_name = $2, email = $3, status = $4, updated_at = NOW()
		 WHERE id = $1`,
		user.ID, user.DisplayName, user.Email, user.Status)
	return err
}

func (r *UserRepoPG) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM system_user`).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf("SELECT %s FROM system_user ORDER BY username LIMIT $1 OFFSET $2", userCols)
	rows, err := r.conn(ctx).Query(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, u)
	}
	return items, total, rows.Err()
}

func (r *UserRepoPG) ByIDs(ctx context.Context, ids []uuid.UUID) ([]*User, error) {
	q := fmt.Sprintf("SELECT %s FROM system_user WHERE id = ANY($1)", userCols)
	rows, err := r.conn(ctx).Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}
