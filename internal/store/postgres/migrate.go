package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const createMigrationsTable = `CREATE TABLE IF NOT EXISTS migrations (
	id         BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	filename   TEXT NOT NULL UNIQUE,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Migration is one applied schema file.
type Migration struct {
	ID        int64     `json:"id"`
	Filename  string    `json:"filename"`
	AppliedAt time.Time `json:"applied_at"`
}

// pendingMigrations returns embedded file names in lexical order, minus
// those already applied.
func pendingMigrations(applied []Migration) ([]string, error) {
	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return nil, err
	}
	slices.Sort(names)

	done := make(map[string]bool, len(applied))
	for _, m := range applied {
		done[m.Filename] = true
	}

	pending := make([]string, 0, len(names))
	for _, name := range names {
		base := name[len("migrations/"):]
		if !done[base] {
			pending = append(pending, base)
		}
	}
	return pending, nil
}

// Migrate applies pending migrations, each in its own transaction, and
// returns the file names it applied.
func (s *Store) Migrate(ctx context.Context) ([]string, error) {
	if _, err := s.pool.Exec(ctx, createMigrationsTable); err != nil {
		return nil, fmt.Errorf("postgres.Migrate: create table: %w", err)
	}

	applied, err := s.AppliedMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("postgres.Migrate: %w", err)
	}

	pending, err := pendingMigrations(applied)
	if err != nil {
		return nil, fmt.Errorf("postgres.Migrate: list files: %w", err)
	}

	for _, name := range pending {
		body, err := migrationFiles.ReadFile("migrations/" + name)
		if err != nil {
			return nil, fmt.Errorf("postgres.Migrate: read %s: %w", name, err)
		}

		err = withTx(ctx, s.pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, string(body)); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `INSERT INTO migrations (filename) VALUES ($1)`, name)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("postgres.Migrate: apply %s: %w", name, err)
		}

		log.Info().Str("file", name).Msg("migration applied")
	}

	return pending, nil
}

// AppliedMigrations lists recorded migrations. A missing migrations table
// means none were applied.
func (s *Store) AppliedMigrations(ctx context.Context) ([]Migration, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT to_regclass('migrations') IS NOT NULL`).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check migrations table: %w", err)
	}
	if !exists {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, `SELECT id, filename, applied_at FROM migrations ORDER BY filename`)
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	defer rows.Close()

	var out []Migration
	for rows.Next() {
		var m Migration
		if err := rows.Scan(&m.ID, &m.Filename, &m.AppliedAt); err != nil {
			return nil, fmt.Errorf("scan migration: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	return out, nil
}

// PendingMigrations lists embedded migration files not yet applied.
func (s *Store) PendingMigrations(ctx context.Context) ([]string, error) {
	applied, err := s.AppliedMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("postgres.PendingMigrations: %w", err)
	}
	pending, err := pendingMigrations(applied)
	if err != nil {
		return nil, fmt.Errorf("postgres.PendingMigrations: %w", err)
	}
	return pending, nil
}
