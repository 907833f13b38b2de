package staff

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

type staffRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &staffRepoPG{pool: pool}
}

func (r *staffRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// The tagged union lives in one table: the profile columns are nullable and
// only the ones matching the role are set.
const staffCols = `id, first_name, last_name, email, phone, role,
	specialty, license_number, ward, shift, created_at, updated_at`

func scanStaff(row pgx.Row) (*Staff, error) {
	var s Staff
	var specialty, license, ward, shift *string
	err := row.Scan(&s.ID, &s.FirstName, &s.LastName, &s.Email, &s.Phone, &s.Role,
		&specialty, &license, &ward, &shift, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("staff member not found")
	}
	if err != nil {
		return nil, err
	}
	switch s.Role {
	case RoleDoctor:
		s.Doctor = &DoctorProfile{}
		if specialty != nil {
			s.Doctor.Specialty = *specialty
		}
		if license != nil {
			s.Doctor.LicenseNumber = *license
		}
	case RoleNurse:
		s.Nurse = &NurseProfile{}
		if ward != nil {
			s.Nurse.Ward = *ward
		}
		if shift != nil {
			s.Nurse.Shift = *shift
		}
	}
	return &s, nil
}

func profileCols(s *Staff) (specialty, license, ward, shift *string) {
	if s.Doctor != nil {
		specialty, license = &s.Doctor.Specialty, &s.Doctor.LicenseNumber
	}
	if s.Nurse != nil {
		ward, shift = &s.Nurse.Ward, &s.Nurse.Shift
	}
	return
}

func (r *staffRepoPG) Create(ctx context.Context, s *Staff) error {
	s.ID = uuid.New()
	specialty, license, ward, shift := profileCols(s)
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO staff (id, first_name, last_name, email, phone, role,
			specialty, license_number, ward, shift)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		s.ID, s.FirstName, s.LastName, s.Email, s.Phone, s.Role,
		specialty, license, ward, shift)
	if isUniqueViolation(err) {
		return apperr.Conflict("staff email %q already exists", s.Email)
	}
	return err
}

func (r *staffRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Staff, error) {
	return scanStaff(r.conn(ctx).QueryRow(ctx,
		`SELECT `+staffCols+` FROM staff WHERE id = $1`, id))
}

func (r *staffRepoPG) GetByEmail(ctx context.Context, email string) (*Staff, error) {
	return scanStaff(r.conn(ctx).QueryRow(ctx,
		`SELECT `+staffCols+` FROM staff WHERE email = $1`, email))
}

func (r *staffRepoPG) Update(ctx context.Context, s *Staff) error {
	specialty, license, ward, shift := profileCols(s)
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE staff SET first_name=$2, last_name=$3, email=$4, phone=$5, role=$6,
			specialty=$7, license_number=$8, ward=$9, shift=$10, updated_at=NOW()
		WHERE id = $1`,
		s.ID, s.FirstName, s.LastName, s.Email, s.Phone, s.Role,
		specialty, license, ward, shift)
	if isUniqueViolation(err) {
		return apperr.Conflict("staff email %q already exists", s.Email)
	}
	if err == nil && tag.RowsAffected() == 0 {
		return apperr.NotFound("staff member not found")
	}
	return err
}

func (r *staffRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM staff WHERE id = $1`, id)
	return err
}

func (r *staffRepoPG) List(ctx context.Context, limit, offset int) ([]*Staff, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM staff`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+staffCols+` FROM staff ORDER BY last_name, first_name LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}

func (r *staffRepoPG) ListByRole(ctx context.Context, role Role) ([]*Staff, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+staffCols+` FROM staff WHERE role = $1 ORDER BY last_name, first_name`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
