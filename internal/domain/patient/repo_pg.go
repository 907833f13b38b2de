package patient

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

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &patientRepoPG{pool: pool}
}

func (r *patientRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const patientCols = `id, first_name, last_name, date_of_birth, gender, phone, address,
	medical_history, status, doctor_id, insurance_id, cnam_id, assigned_resources,
	created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.DateOfBirth, &p.Gender,
		&p.Phone, &p.Address, &p.MedicalHistory, &p.Status, &p.DoctorID,
		&p.InsuranceID, &p.CNAMID, &p.AssignedResources, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("patient not found")
	}
	if p.AssignedResources == nil {
		p.AssignedResources = []uuid.UUID{}
	}
	return &p, err
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient (id, first_name, last_name, date_of_birth, gender, phone,
			address, medical_history, status, doctor_id, insurance_id, cnam_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		p.ID, p.FirstName, p.LastName, p.DateOfBirth, p.Gender, p.Phone,
		p.Address, p.MedicalHistory, p.Status, p.DoctorID, p.InsuranceID, p.CNAMID)
	return err
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET first_name=$2, last_name=$3, date_of_birth=$4, gender=$5,
			phone=$6, address=$7, medical_history=$8, status=$9, doctor_id=$10,
			insurance_id=$11, cnam_id=$12, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.FirstName, p.LastName, p.DateOfBirth, p.Gender, p.Phone,
		p.Address, p.MedicalHistory, p.Status, p.DoctorID, p.InsuranceID, p.CNAMID)
	if err == nil && tag.RowsAffected() == 0 {
		return apperr.NotFound("patient not found")
	}
	return err
}

func (r *patientRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)
	return err
}

func (r *patientRepoPG) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Patient, int, error) {
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
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.DoctorID != nil {
		add("doctor_id = $%d", *filter.DoctorID)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM patient`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx, fmt.Sprintf(
		`SELECT %s FROM patient%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		patientCols, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

// AddResources deduplicates in SQL so repeated assignment of the same id
// keeps the set a set.
func (r *patientRepoPG) AddResources(ctx context.Context, patientID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient
		SET assigned_resources = ARRAY(
			SELECT DISTINCT e FROM unnest(assigned_resources || $2::uuid[]) AS e
		), updated_at = NOW()
		WHERE id = $1`,
		patientID, ids)
	if err == nil && tag.RowsAffected() == 0 {
		return apperr.NotFound("patient not found")
	}
	return err
}

func (r *patientRepoPG) RemoveResource(ctx context.Context, patientID, resourceID uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient
		SET assigned_resources = array_remove(assigned_resources, $2), updated_at = NOW()
		WHERE id = $1`,
		patientID, resourceID)
	if err == nil && tag.RowsAffected() == 0 {
		return apperr.NotFound("patient not found")
	}
	return err
}

func (r *patientRepoPG) Discharge(ctx context.Context, patientID uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient
		SET status = $2, assigned_resources = '{}', updated_at = NOW()
		WHERE id = $1`,
		patientID, StatusDischarged)
	if err == nil && tag.RowsAffected() == 0 {
		return apperr.NotFound("patient not found")
	}
	return err
}
