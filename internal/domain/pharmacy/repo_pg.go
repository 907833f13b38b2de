package pharmacy

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

type pharmacyRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &pharmacyRepoPG{pool: pool}
}

func (r *pharmacyRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const stockCols = `id, name, quantity, unit_price, expiry_date, created_at, updated_at`

func scanStockItem(row pgx.Row) (*StockItem, error) {
	var s StockItem
	err := row.Scan(&s.ID, &s.Name, &s.Quantity, &s.UnitPrice, &s.ExpiryDate,
		&s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("stock item not found")
	}
	return &s, err
}

func (r *pharmacyRepoPG) Create(ctx context.Context, s *StockItem) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO pharmacy_stock (id, name, quantity, unit_price, expiry_date)
		VALUES ($1,$2,$3,$4,$5)`,
		s.ID, s.Name, s.Quantity, s.UnitPrice, s.ExpiryDate)
	return err
}

func (r *pharmacyRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*StockItem, error) {
	return scanStockItem(r.conn(ctx).QueryRow(ctx,
		`SELECT `+stockCols+` FROM pharmacy_stock WHERE id = $1`, id))
}

func (r *pharmacyRepoPG) Update(ctx context.Context, s *StockItem) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE pharmacy_stock SET name=$2, quantity=$3, unit_price=$4, expiry_date=$5, updated_at=NOW()
		WHERE id = $1`,
		s.ID, s.Name, s.Quantity, s.UnitPrice, s.ExpiryDate)
	if err == nil && tag.RowsAffected() == 0 {
		return apperr.NotFound("stock item not found")
	}
	return err
}

func (r *pharmacyRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM pharmacy_stock WHERE id = $1`, id)
	return err
}

func (r *pharmacyRepoPG) List(ctx context.Context, limit, offset int) ([]*StockItem, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM pharmacy_stock`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+stockCols+` FROM pharmacy_stock ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*StockItem
	for rows.Next() {
		s, err := scanStockItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}

func (r *pharmacyRepoPG) Decrement(ctx context.Context, id uuid.UUID, qty int) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE pharmacy_stock SET quantity = quantity - $2, updated_at = NOW()
		WHERE id = $1 AND quantity >= $2`,
		id, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return apperr.Conflict("insufficient stock for item %s", id)
	}
	return nil
}
