package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/cashcraft/server/internal/models"
)

// User repository methods
func (r *PostgresRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, password, display_name, is_premium, premium_expires_at,
			is_guest, google_id, is_verified, last_login, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	// Generate a new UUID if not provided
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.Password, user.DisplayName, user.IsPremium, user.PremiumExpiresAt,
		user.IsGuest, user.GoogleID, user.IsVerified, user.LastLogin, user.CreatedAt, user.UpdatedAt)

	return err
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT * FROM users WHERE email = $1`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, err
	}

	return &user, nil
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT * FROM users WHERE id = $1`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, err
	}

	return &user, nil
}

func (r *PostgresRepository) GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	query := `SELECT * FROM users WHERE google_id = $1`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, googleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

func (r *PostgresRepository) TouchLastLogin(ctx context.Context, userID string) error {
	query := `UPDATE users SET last_login = $1, updated_at = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, time.Now().UTC(), userID)
	return err
}

func (r *PostgresRepository) LinkGoogleID(ctx context.Context, userID, googleID string) error {
	query := `UPDATE users SET google_id = $1, last_login = $2, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, googleID, time.Now().UTC(), userID)
	return err
}
