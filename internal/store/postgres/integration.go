package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/leasedesk/internal/domain"
)

const integrationColumns = `id, provider, type, status, api_key, created_at`

type IntegrationRepo struct {
	pool *pgxpool.Pool
}

func NewIntegrationRepo(pool *pgxpool.Pool) *IntegrationRepo {
	return &IntegrationRepo{pool: pool}
}

func scanIntegration(row pgx.Row) (*domain.Integration, error) {
	var i domain.Integration
	if err := row.Scan(&i.ID, &i.Provider, &i.Type, &i.Status, &i.APIKey, &i.CreatedAt); err != nil {
		return nil, err
	}
	i.HasAPIKey = i.APIKey != ""
	return &i, nil
}

func (r *IntegrationRepo) Create(ctx context.Context, i *domain.Integration) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO integrations (provider, type, status, api_key, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		i.Provider, i.Type, i.Status, i.APIKey, i.CreatedAt,
	).Scan(&i.ID)
	if err != nil {
		return fmt.Errorf("integrationRepo.Create: %w", mapError(err))
	}

	return nil
}

func (r *IntegrationRepo) List(ctx context.Context, f domain.IntegrationFilter, page domain.Page) ([]*domain.Integration, int64, error) {
	var w where
	if f.Type != "" {
		w.add("type = $%d", f.Type)
	}
	if f.Status != "" {
		w.add("status = $%d", f.Status)
	}

	total, err := count(ctx, r.pool, "integrations", &w)
	if err != nil {
		return nil, 0, fmt.Errorf("integrationRepo.List: count: %w", err)
	}

	limit, args := w.page(page)
	rows, err := r.pool.Query(ctx,
		`SELECT `+integrationColumns+` FROM integrations`+w.String()+` ORDER BY id`+limit, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("integrationRepo.List: %w", err)
	}
	defer rows.Close()

	integrations := make([]*domain.Integration, 0, page.Limit())
	for rows.Next() {
		i, err := scanIntegration(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("integrationRepo.List: scan: %w", err)
		}
		integrations = append(integrations, i)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("integrationRepo.List: rows: %w", err)
	}

	return integrations, total, nil
}
