package resource

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

type resourceRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &resourceRepoPG{pool: pool}
}

func (r *resourceRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const resourceCols = `id, type, status, location, is_functional, last_maintenance_date, assigned_patient_id, created_at, updated_at`

func scanResource(row pgx.Row) (*Resource, error) {
	var res Resource
	err := row.Scan(&res.ID, &res.Type, &res.Status, &res.Location, &res.IsFunctional,
		&res.LastMaintenanceDate, &res.AssignedPatientID, &res.CreatedAt, &res.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("resource not found")
	}
	return &res, err
}

func (r *resourceRepoPG) Create(ctx context.Context, res *Resource) error {
	res.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO resource (id, type, status, location, is_functional, last_maintenance_date)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		res.ID, res.Type, res.Status, res.Location, res.IsFunctional, res.LastMaintenanceDate)
	return err
}

func (r *resourceRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Resource, error) {
	return scanResource(r.conn(ctx).QueryRow(ctx,
		`SELECT `+resourceCols+` FROM resource WHERE id = $1`, id))
}

func (r *resourceRepoPG) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*Resource, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+resourceCols+` FROM resource WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Resource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, res)
	}
	return items, rows.Err()
}

func (r *resourceRepoPG) Update(ctx context.Context, res *Resource) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE resource SET type=$2, status=$3, location=$4, is_functional=$5,
			last_maintenance_date=$6, updated_at=NOW()
		WHERE id = $1`,
		res.ID, res.Type, res.Status, res.Location, res.IsFunctional, res.LastMaintenanceDate)
	if err == nil && tag.RowsAffected() == 0 {
		return apperr.NotFound("resource not found")
	}
	return err
}

func (r *resourceRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM resource WHERE id = $1`, id)
	return err
}

func (r *resourceRepoPG) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Resource, int, error) {
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
	if filter.Type != "" {
		add("type = $%d", filter.Type)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM resource`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, fmt.Sprintf(
		`SELECT %s FROM resource%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		resourceCols, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Resource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, res)
	}
	return items, total, rows.Err()
}

// Claim is the conditional write that prevents double-booking: the status
// check lives in the WHERE clause so a lost race updates zero rows.
func (r *resourceRepoPG) Claim(ctx context.Context, id, patientID uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE resource SET status=$3, assigned_patient_id=$2, updated_at=NOW()
		WHERE id = $1 AND status = $4 AND is_functional`,
		id, patientID, StatusOccupied, StatusAvailable)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a lost race from a bad id.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return apperr.Conflict("resource %s is not available", id)
	}
	return nil
}

func (r *resourceRepoPG) Release(ctx context.Context, id, patientID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE resource SET status=$3, assigned_patient_id=NULL, updated_at=NOW()
		WHERE id = $1 AND assigned_patient_id = $2`,
		id, patientID, StatusAvailable)
	return err
}

func (r *resourceRepoPG) ReleaseAllForPatient(ctx context.Context, patientID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		UPDATE resource SET status=$2, assigned_patient_id=NULL, updated_at=NOW()
		WHERE assigned_patient_id = $1
		RETURNING id`,
		patientID, StatusAvailable)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var freed []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		freed = append(freed, id)
	}
	return freed, rows.Err()
}
