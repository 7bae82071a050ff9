package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cashcraft/server/internal/models"
)

const upsertRateQuery = `
	INSERT INTO currency_cache (base_currency, target_currency, user_id, rate, source, last_updated)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (base_currency, target_currency, user_id)
	DO UPDATE SET rate = EXCLUDED.rate, source = EXCLUDED.source, last_updated = EXCLUDED.last_updated
`

// Rate cache repository methods

// GetRate returns the global cache entry for a currency pair
func (r *PostgresRepository) GetRate(ctx context.Context, base, target string) (*models.RateCacheEntry, error) {
	query := `
		SELECT * FROM currency_cache
		WHERE base_currency = $1 AND target_currency = $2 AND user_id = ''
	`

	var entry models.RateCacheEntry
	err := r.db.GetContext(ctx, &entry, query, base, target)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Rate not cached
		}
		return nil, err
	}

	return &entry, nil
}

// UpsertRates writes a batch of cache entries in one transaction
func (r *PostgresRepository) UpsertRates(ctx context.Context, entries []models.RateCacheEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
	}()

	for _, entry := range entries {
		_, err = tx.ExecContext(ctx, upsertRateQuery,
			entry.BaseCurrency, entry.TargetCurrency, entry.UserID,
			entry.Rate, entry.Source, entry.LastUpdated)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *PostgresRepository) CountRates(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM currency_cache WHERE user_id = ''`)
	return count, err
}

// LatestRateUpdate returns the most recent global cache update time, or nil
// when the cache is empty
func (r *PostgresRepository) LatestRateUpdate(ctx context.Context) (*time.Time, error) {
	var latest sql.NullTime
	err := r.db.GetContext(ctx, &latest,
		`SELECT MAX(last_updated) FROM currency_cache WHERE user_id = ''`)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if !latest.Valid {
		return nil, nil
	}
	return &latest.Time, nil
}

func (r *PostgresRepository) GetUserRates(ctx context.Context, userID string) ([]models.RateCacheEntry, error) {
	query := `
		SELECT * FROM currency_cache WHERE user_id = $1
		ORDER BY base_currency ASC, target_currency ASC
	`

	var entries []models.RateCacheEntry
	err := r.db.SelectContext(ctx, &entries, query, userID)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *PostgresRepository) UpsertUserRate(ctx context.Context, entry *models.RateCacheEntry) error {
	if entry.LastUpdated.IsZero() {
		entry.LastUpdated = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, upsertRateQuery,
		entry.BaseCurrency, entry.TargetCurrency, entry.UserID,
		entry.Rate, entry.Source, entry.LastUpdated)
	return err
}

func (r *PostgresRepository) DeleteUserRate(ctx context.Context, userID, base, target string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM currency_cache WHERE user_id = $1 AND base_currency = $2 AND target_currency = $3`,
		userID, base, target)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
