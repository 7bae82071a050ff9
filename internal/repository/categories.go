package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/cashcraft/server/internal/models"
)

// Category repository methods
func (r *PostgresRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (id, user_id, name, type, icon, color, is_system, synced_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	if category.ID == "" {
		category.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	category.CreatedAt = now
	category.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		category.ID, category.UserID, category.Name, category.Type, category.Icon,
		category.Color, category.IsSystem, category.SyncedAt, category.CreatedAt, category.UpdatedAt)

	return err
}

// GetCategory returns a category visible to the user: their own or a shared
// one with no owner
func (r *PostgresRepository) GetCategory(ctx context.Context, id, userID string) (*models.Category, error) {
	query := `SELECT * FROM categories WHERE id = $1 AND (user_id = $2 OR user_id IS NULL)`

	var category models.Category
	err := r.db.GetContext(ctx, &category, query, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Category not found
		}
		return nil, err
	}

	return &category, nil
}

func (r *PostgresRepository) GetCategories(ctx context.Context, userID string) ([]models.Category, error) {
	query := `
		SELECT * FROM categories
		WHERE user_id = $1 OR user_id IS NULL
		ORDER BY type ASC, name ASC
	`

	var categories []models.Category
	err := r.db.SelectContext(ctx, &categories, query, userID)
	if err != nil {
		return nil, err
	}

	return categories, nil
}

// CountCustomCategories counts the user's own non-system categories, the
// ones that count against the free-tier limit
func (r *PostgresRepository) CountCustomCategories(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM categories WHERE user_id = $1 AND is_system = FALSE`, userID)
	return count, err
}

func (r *PostgresRepository) CountTransactionsByCategory(ctx context.Context, categoryID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM transactions WHERE category_id = $1`, categoryID)
	return count, err
}

func (r *PostgresRepository) UpdateCategory(ctx context.Context, category *models.Category) error {
	category.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE categories SET name = $1, type = $2, icon = $3, color = $4, updated_at = $5
		WHERE id = $6 AND user_id = $7
	`

	_, err := r.db.ExecContext(ctx, query,
		category.Name, category.Type, category.Icon, category.Color,
		category.UpdatedAt, category.ID, category.UserID)
	return err
}

func (r *PostgresRepository) DeleteCategory(ctx context.Context, id, userID string) error {
	query := `DELETE FROM categories WHERE id = $1 AND user_id = $2`
	_, err := r.db.ExecContext(ctx, query, id, userID)
	return err
}

// DeleteCustomCategories removes all non-system categories for the user
// (used by category reset)
func (r *PostgresRepository) DeleteCustomCategories(ctx context.Context, userID string) error {
	query := `DELETE FROM categories WHERE user_id = $1 AND is_system = FALSE`
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}
