package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/leasedesk/internal/domain"
)

const propertyColumns = `id, name, address, owner_id, created_at, updated_at`

type PropertyRepo struct {
	pool *pgxpool.Pool
}

func NewPropertyRepo(pool *pgxpool.Pool) *PropertyRepo {
	return &PropertyRepo{pool: pool}
}

func scanProperty(row pgx.Row) (*domain.Property, error) {
	var p domain.Property
	if err := row.Scan(&p.ID, &p.Name, &p.Address, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PropertyRepo) Create(ctx context.Context, p *domain.Property) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO properties (name, address, owner_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		p.Name, p.Address, p.OwnerID, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("propertyRepo.Create: %w", mapError(err))
	}

	return nil
}

func (r *PropertyRepo) GetByID(ctx context.Context, id int64) (*domain.Property, error) {
	p, err := scanProperty(r.pool.QueryRow(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("propertyRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("propertyRepo.GetByID: %w", err)
	}

	return p, nil
}

func (r *PropertyRepo) Update(ctx context.Context, p *domain.Property) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE properties SET name = $1, address = $2, owner_id = $3, updated_at = now()
		 WHERE id = $4
		 RETURNING updated_at`,
		p.Name, p.Address, p.OwnerID, p.ID,
	).Scan(&p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("propertyRepo.Update: %w", domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("propertyRepo.Update: %w", mapError(err))
	}

	return nil
}

// Delete removes the property; units go with it through ON DELETE CASCADE.
func (r *PropertyRepo) Delete(ctx context.Context, id int64) error {
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		var leased bool
		err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM leases WHERE property_id = $1)`, id,
		).Scan(&leased)
		if err != nil {
			return err
		}
		if leased {
			return fmt.Errorf("leases exist: %w", domain.ErrConflict)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)
		if err != nil {
			return mapDeleteError(err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("propertyRepo.Delete: %w", err)
	}

	return nil
}

func (r *PropertyRepo) List(ctx context.Context, f domain.PropertyFilter, page domain.Page) ([]*domain.Property, int64, error) {
	var w where
	if f.OwnerID != 0 {
		w.add("owner_id = $%d", f.OwnerID)
	}

	total, err := count(ctx, r.pool, "properties", &w)
	if err != nil {
		return nil, 0, fmt.Errorf("propertyRepo.List: count: %w", err)
	}

	limit, args := w.page(page)
	rows, err := r.pool.Query(ctx,
		`SELECT `+propertyColumns+` FROM properties`+w.String()+` ORDER BY id`+limit, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("propertyRepo.List: %w", err)
	}
	defer rows.Close()

	props := make([]*domain.Property, 0, page.Limit())
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("propertyRepo.List: scan: %w", err)
		}
		props = append(props, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("propertyRepo.List: rows: %w", err)
	}

	return props, total, nil
}
