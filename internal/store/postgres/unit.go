package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/leasedesk/internal/domain"
)

const unitColumns = `id, property_id, unit_number, rent_amount, status, created_at, updated_at`

type UnitRepo struct {
	pool *pgxpool.Pool
}

func NewUnitRepo(pool *pgxpool.Pool) *UnitRepo {
	return &UnitRepo{pool: pool}
}

func scanUnit(row pgx.Row) (*domain.Unit, error) {
	var u domain.Unit
	if err := row.Scan(&u.ID, &u.PropertyID, &u.UnitNumber, &u.RentAmount, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UnitRepo) Create(ctx context.Context, u *domain.Unit) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO units (property_id, unit_number, rent_amount, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		u.PropertyID, u.UnitNumber, u.RentAmount, u.Status, u.CreatedAt, u.UpdatedAt,
	).Scan(&u.ID)
	if err != nil {
		return fmt.Errorf("unitRepo.Create: %w", mapError(err))
	}

	return nil
}

func (r *UnitRepo) GetByID(ctx context.Context, id int64) (*domain.Unit, error) {
	u, err := scanUnit(r.pool.QueryRow(ctx,
		`SELECT `+unitColumns+` FROM units WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("unitRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("unitRepo.GetByID: %w", err)
	}

	return u, nil
}

func (r *UnitRepo) Update(ctx context.Context, u *domain.Unit) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE units SET property_id = $1, unit_number = $2, rent_amount = $3, status = $4, updated_at = now()
		 WHERE id = $5
		 RETURNING updated_at`,
		u.PropertyID, u.UnitNumber, u.RentAmount, u.Status, u.ID,
	).Scan(&u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("unitRepo.Update: %w", domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("unitRepo.Update: %w", mapError(err))
	}

	return nil
}

func (r *UnitRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM units WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("unitRepo.Delete: %w", mapDeleteError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("unitRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *UnitRepo) List(ctx context.Context, f domain.UnitFilter, page domain.Page) ([]*domain.Unit, int64, error) {
	var w where
	if f.PropertyID != 0 {
		w.add("property_id = $%d", f.PropertyID)
	}
	if f.Status != "" {
		w.add("status = $%d", f.Status)
	}

	total, err := count(ctx, r.pool, "units", &w)
	if err != nil {
		return nil, 0, fmt.Errorf("unitRepo.List: count: %w", err)
	}

	limit, args := w.page(page)
	rows, err := r.pool.Query(ctx,
		`SELECT `+unitColumns+` FROM units`+w.String()+` ORDER BY id`+limit, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("unitRepo.List: %w", err)
	}
	defer rows.Close()

	units := make([]*domain.Unit, 0, page.Limit())
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("unitRepo.List: scan: %w", err)
		}
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("unitRepo.List: rows: %w", err)
	}

	return units, total, nil
}
