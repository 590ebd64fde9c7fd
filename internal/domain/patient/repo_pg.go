package patient

import (
	"context"
	"errors"
	"fmt"

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

const patientColumns = `id, mrn, first_name, last_name, birth_date, gender, phone, email, clinic_id, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patient (id, mrn, first_name, last_name, birth_date, gender, phone, email, clinic_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		p.ID, p.MRN, p.FirstName, p.LastName, p.BirthDate, p.Gender, p.Phone, p.Email, p.ClinicID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientColumns+` FROM patient WHERE id = $1`, id))
}

func (r *repoPG) GetByMRN(ctx context.Context, mrn string) (*Patient, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientColumns+` FROM patient WHERE mrn = $1`, mrn))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET
			mrn = $2, first_name = $3, last_name = $4, birth_date = $5,
			gender = $6, phone = $7, email = $8, clinic_id = $9, updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.MRN, p.FirstName, p.LastName, p.BirthDate,
		p.Gender, p.Phone, p.Email, p.ClinicID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, clinicID *uuid.UUID, limit, offset int) ([]*Patient, int, error) {
	where := ""
	args := []any{}
	if clinicID != nil {
		where = " WHERE clinic_id = $1"
		args = append(args, *clinicID)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM patient%s ORDER BY last_name, first_name LIMIT $%d OFFSET $%d`,
		patientColumns, where, len(args)+1, len(args)+2)
	rows, err := r.conn(ctx).Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		patients = append(patients, p)
	}
	return patients, total, rows.Err()
}

func (r *repoPG) scan(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID, &p.MRN, &p.FirstName, &p.LastName, &p.BirthDate,
		&p.Gender, &p.Phone, &p.Email, &p.ClinicID, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
