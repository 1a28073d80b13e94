package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"film-ticket-desk/internal/cache"
	apperrors "film-ticket-desk/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OverrideRepository 以 Postgres 保存 override，滿足 cache.OverrideStore
type OverrideRepository interface {
	cache.OverrideStore
	// 建立 film_ticket_overrides 表 (若不存在)
	EnsureSchema(ctx context.Context) error
}

type OverrideRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewOverrideRepository(pool *pgxpool.Pool) OverrideRepository {
	return &OverrideRepositoryImpl{
		pool: pool,
	}
}

func (r *OverrideRepositoryImpl) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS film_ticket_overrides (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	_, err := r.pool.Exec(ctx, query)
	return err
}

func (r *OverrideRepositoryImpl) Get(ctx context.Context, filmID int) (int, error) {
	query := `
		SELECT value
		FROM film_ticket_overrides
		WHERE key = $1
	`

	var val string
	err := r.pool.QueryRow(ctx, query, cache.OverrideKey(filmID)).Scan(&val)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return -1, apperrors.ErrOverrideNotFound
		}
		return -1, err
	}

	remaining, err := strconv.Atoi(val)
	if err != nil {
		return -1, fmt.Errorf("invalid override %q: %v", val, err)
	}
	return remaining, nil
}

func (r *OverrideRepositoryImpl) Set(ctx context.Context, filmID int, remaining int) error {
	query := `
		INSERT INTO film_ticket_overrides (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = NOW()
	`
	_, err := r.pool.Exec(ctx, query, cache.OverrideKey(filmID), strconv.Itoa(remaining))
	return err
}

func (r *OverrideRepositoryImpl) Delete(ctx context.Context, filmID int) error {
	query := `
		DELETE FROM film_ticket_overrides
		WHERE key = $1
	`
	_, err := r.pool.Exec(ctx, query, cache.OverrideKey(filmID))
	return err
}
