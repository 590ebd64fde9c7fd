package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"

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

// RepoPG is the PostgreSQL implementation of Repository.
type RepoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) *RepoPG {
	return &RepoPG{pool: pool}
}

func (r *RepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const eventCols = `id, user_id, action, resource_type, resource_id, detail, ip_address, user_agent, created_at`

func scanEvent(row pgx.Row) (*Event, error) {
	var e Event
	err := row.Scan(
		&e.ID, &e.UserID, &e.Action, &e.ResourceType, &e.ResourceID,
		&e.Detail, &e.IPAddress, &e.UserAgent, &e.CreatedAt,
	)
	return &e, err
}

func (r *RepoPG) Insert(ctx context.Context, event *Event) error {
	return r.conn(ctx).QueryRow(ctx,
		`INSERT INTO audit_event (user_id, action, resource_type, resource_id, detail, ip_address, user_agent)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at`,
		event.UserID, event.Action, event.ResourceType, event.ResourceID,
		event.Detail, event.IPAddress, event.UserAgent,
	).Scan(&event.ID, &event.CreatedAt)
}

func (r *RepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	q := fmt.Sprintf("SELECT %s FROM audit_event WHERE id = $1", eventCols)
	e, err := scanEvent(r.conn(ctx).QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *RepoPG) Search(ctx context.Context, f Filter, limit, offset int) ([]*Event, int, error) {
	where := []string{}
	args := []interface{}{}
	idx := 1

	if f.UserID != nil {
		where = append(where, fmt.Sprintf("user_id = $%d", idx))
		args = append(args, *f.UserID)
		idx++
	}
	if f.Action != "" {
		where = append(where, fmt.Sprintf("action = $%d", idx))
		args = append(args, f.Action)
		idx++
	}
	if f.ResourceType != "" {
		where = append(where, fmt.Sprintf("resource_type = $%d", idx))
		args = append(args, f.ResourceType)
		idx++
	}
	if f.ResourceID != nil {
		where = append(where, fmt.Sprintf("resource_id = $%d", idx))
		args = append(args, *f.ResourceID)
		idx++
	}
	if f.From != nil {
		where = append(where, fmt.Sprintf("created_at >= $%d", idx))
		args = append(args, *f.From)
		idx++
	}
	if f.To != nil {
		where = append(where, fmt.Sprintf("created_at <= $%d", idx))
		args = append(args, *f.To)
		idx++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	countQ := fmt.Sprintf("SELECT COUNT(*) FROM audit_event %s", whereClause)
	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf("SELECT %s FROM audit_event %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		eventCols, whereClause, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}
