package leave

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mohamedaminesabehy/pisonar-sub001/internal/platform/apperr"
	"github.com/mohamedaminesabehy/pisonar-sub001/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type leaveRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &leaveRepoPG{pool: pool}
}

func (r *leaveRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const leaveCols = `id, staff_id, start_date, end_date, reason, status, created_at, updated_at`

func scanRequest(row pgx.Row) (*Request, error) {
	var req Request
	err := row.Scan(&req.ID, &req.StaffID, &req.StartDate, &req.EndDate,
		&req.Reason, &req.Status, &req.CreatedAt, &req.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("leave request not found")
	}
	return &req, err
}

func (r *leaveRepoPG) Create(ctx context.Context, req *Request) error {
	req.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO leave_request (id, staff_id, start_date, end_date, reason, status)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		req.ID, req.StaffID, req.StartDate, req.EndDate, req.Reason, req.Status)
	return err
}

func (r *leaveRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Request, error) {
	return scanRequest(r.conn(ctx).QueryRow(ctx,
		`SELECT `+leaveCols+` FROM leave_request WHERE id = $1`, id))
}

func (r *leaveRepoPG) Update(ctx context.Context, req *Request) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE leave_request SET start_date=$2, end_date=$3, reason=$4, status=$5, updated_at=NOW()
		WHERE id = $1`,
		req.ID, req.StartDate, req.EndDate, req.Reason, req.Status)
	if err == nil && tag.RowsAffected() == 0 {
		return apperr.NotFound("leave request not found")
	}
	return err
}

func (r *leaveRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM leave_request WHERE id = $1`, id)
	return err
}

func (r *leaveRepoPG) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Request, int, error) {
	where := ""
	args := []interface{}{}
	add := func(clause string, val interface{}) {
		args = append(args, val)
		cond := fmt.Sprintf(clause, len(args))
		if where == "" {
			where = " WHERE " + cond
		} else {
			where += " AND " + cond
		}
	}
	if filter.StaffID != nil {
		add("staff_id = $%d", *filter.StaffID)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM leave_request`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, fmt.Sprintf(
		`SELECT %s FROM leave_request%s ORDER BY start_date DESC LIMIT $%d OFFSET $%d`,
		leaveCols, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, req)
	}
	return items, total, rows.Err()
}

func (r *leaveRepoPG) ListApprovedByStaff(ctx context.Context, staffID uuid.UUID) ([]*Request, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+leaveCols+` FROM leave_request WHERE staff_id = $1 AND status = $2`,
		staffID, StatusApproved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, req)
	}
	return items, rows.Err()
}
