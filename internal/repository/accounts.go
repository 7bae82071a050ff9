package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/cashcraft/server/internal/models"
)

const insertAccountQuery = `
	INSERT INTO accounts (id, user_id, name, type, balance, currency, exchange_rate,
		card_number, color, icon, is_default, is_included_in_total, target_amount,
		credit_start_date, credit_term, credit_rate, credit_payment_type,
		credit_initial_amount, synced_at, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
`

// Account repository methods
func (r *PostgresRepository) CreateAccount(ctx context.Context, account *models.Account) error {
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

	// Generate a new UUID if not provided
	if account.ID == "" {
		account.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now

	// Only one account per user may be the default
	if account.IsDefault {
		_, err = tx.ExecContext(ctx,
			`UPDATE accounts SET is_default = FALSE WHERE user_id = $1`, account.UserID)
		if err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, insertAccountQuery,
		account.ID, account.UserID, account.Name, account.Type, account.Balance,
		account.Currency, account.ExchangeRate, account.CardNumber, account.Color,
		account.Icon, account.IsDefault, account.IsIncludedInTotal, account.TargetAmount,
		account.CreditStartDate, account.CreditTerm, account.CreditRate,
		account.CreditPaymentType, account.CreditInitialAmount, account.SyncedAt,
		account.CreatedAt, account.UpdatedAt)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PostgresRepository) GetAccount(ctx context.Context, id, userID string) (*models.Account, error) {
	query := `SELECT * FROM accounts WHERE id = $1 AND user_id = $2`

	var account models.Account
	err := r.db.GetContext(ctx, &account, query, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Account not found
		}
		return nil, err
	}

	return &account, nil
}

func (r *PostgresRepository) GetAccounts(ctx context.Context, userID string) ([]models.Account, error) {
	query := `SELECT * FROM accounts WHERE user_id = $1 ORDER BY created_at DESC`

	var accounts []models.Account
	err := r.db.SelectContext(ctx, &accounts, query, userID)
	if err != nil {
		return nil, err
	}

	return accounts, nil
}

func (r *PostgresRepository) CountAccounts(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM accounts WHERE user_id = $1`, userID)
	return count, err
}

func (r *PostgresRepository) UpdateAccount(ctx context.Context, account *models.Account) error {
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

	if account.IsDefault {
		_, err = tx.ExecContext(ctx,
			`UPDATE accounts SET is_default = FALSE WHERE user_id = $1 AND id <> $2`,
			account.UserID, account.ID)
		if err != nil {
			return err
		}
	}

	account.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE accounts SET name = $1, type = $2, balance = $3, currency = $4,
			exchange_rate = $5, card_number = $6, color = $7, icon = $8,
			is_default = $9, is_included_in_total = $10, updated_at = $11
		WHERE id = $12 AND user_id = $13
	`

	_, err = tx.ExecContext(ctx, query,
		account.Name, account.Type, account.Balance, account.Currency,
		account.ExchangeRate, account.CardNumber, account.Color, account.Icon,
		account.IsDefault, account.IsIncludedInTotal, account.UpdatedAt,
		account.ID, account.UserID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteAccount removes an account together with every transaction that
// references it as either leg
func (r *PostgresRepository) DeleteAccount(ctx context.Context, id, userID string) error {
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

	_, err = tx.ExecContext(ctx,
		`DELETE FROM transactions WHERE user_id = $1 AND (account_id = $2 OR to_account_id = $2)`,
		userID, id)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM accounts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}

	return tx.Commit()
}
