package clinic

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
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const clinicColumns = `id, name, address, city, state, postal_code, phone, active, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, c *Clinic) error {
	c.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO clinic (id, name, address, city, state, postal_code, phone, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`,
		c.ID, c.Name, c.Address, c.City, c.State, c.PostalCode, c.Phone, c.Active,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Clinic, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+clinicColumns+` FROM clinic WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, c *Clinic) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE clinic SET
			name = $2, address = $3, city = $4, state = $5,
			postal_code = $6, phone = $7, active = $8, updated_at = NOW()
		WHERE id = $1`,
		c.ID, c.Name, c.Address, c.City, c.State, c.PostalCode, c.Phone, c.Active,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Clinic, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM clinic`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+clinicColumns+` FROM clinic ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var clinics []*Clinic
	for rows.Next() {
		c, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		clinics = append(clinics, c)
	}
	return clinics, total, rows.Err()
}

func (r *repoPG) scan(row pgx.Row) (*Clinic, error) {
	var c Clinic
	err := row.Scan(
		&c.ID, &c.Name, &c.Address, &c.City, &c.State,
		&c.PostalCode, &c.Phone, &c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
