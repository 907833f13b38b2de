package coverage

import (
	"context"
	"errors"

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

type coverageRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &coverageRepoPG{pool: pool}
}

func (r *coverageRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const coverageCols = `id, kind, code, percentage, cutoff_date, is_active, created_at, updated_at`

func (r *coverageRepoPG) scan(row pgx.Row) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.Kind, &rec.Code, &rec.Percentage,
		&rec.CutoffDate, &rec.IsActive, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("coverage record not found")
	}
	return &rec, err
}

func (r *coverageRepoPG) Create(ctx context.Context, rec *Record) error {
	rec.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO coverage_record (id, kind, code, percentage, cutoff_date, is_active)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		rec.ID, rec.Kind, rec.Code, rec.Percentage, rec.CutoffDate, rec.IsActive)
	if isUniqueViolation(err) {
		return apperr.Conflict("%s code %q already exists", rec.Kind, rec.Code)
	}
	return err
}

func (r *coverageRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+coverageCols+` FROM coverage_record WHERE id = $1`, id))
}

func (r *coverageRepoPG) GetByCode(ctx context.Context, kind Kind, code string) (*Record, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+coverageCols+` FROM coverage_record WHERE kind = $1 AND code = $2`, kind, code))
}

func (r *coverageRepoPG) Update(ctx context.Context, rec *Record) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE coverage_record SET code=$2, percentage=$3, cutoff_date=$4, is_active=$5, updated_at=NOW()
		WHERE id = $1`,
		rec.ID, rec.Code, rec.Percentage, rec.CutoffDate, rec.IsActive)
	if isUniqueViolation(err) {
		return apperr.Conflict("%s code %q already exists", rec.Kind, rec.Code)
	}
	if err == nil && tag.RowsAffected() == 0 {
		return apperr.NotFound("coverage record not found")
	}
	return err
}

func (r *coverageRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM coverage_record WHERE id = $1`, id)
	return err
}

func (r *coverageRepoPG) List(ctx context.Context, kind Kind, limit, offset int) ([]*Record, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM coverage_record WHERE kind = $1`, kind).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+coverageCols+` FROM coverage_record WHERE kind = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		kind, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Record
	for rows.Next() {
		rec, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rec)
	}
	return items, total, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
