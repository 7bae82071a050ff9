package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cashcraft/server/internal/balance"
	"github.com/cashcraft/server/internal/models"
)

// Debt repository methods
func (r *PostgresRepository) CreateDebt(ctx context.Context, debt *models.Debt) error {
	query := `
		INSERT INTO debts (id, user_id, type, name, amount, is_included_in_total,
			due_date, synced_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	if debt.ID == "" {
		debt.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	debt.CreatedAt = now
	debt.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		debt.ID, debt.UserID, debt.Type, debt.Name, debt.Amount,
		debt.IsIncludedInTotal, debt.DueDate, debt.SyncedAt, debt.CreatedAt, debt.UpdatedAt)

	return err
}

func (r *PostgresRepository) GetDebt(ctx context.Context, id, userID string) (*models.Debt, error) {
	query := `SELECT * FROM debts WHERE id = $1 AND user_id = $2`

	var debt models.Debt
	err := r.db.GetContext(ctx, &debt, query, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Debt not found
		}
		return nil, err
	}

	return &debt, nil
}

func (r *PostgresRepository) GetDebts(ctx context.Context, userID string) ([]models.Debt, error) {
	query := `SELECT * FROM debts WHERE user_id = $1 ORDER BY created_at DESC`

	var debts []models.Debt
	err := r.db.SelectContext(ctx, &debts, query, userID)
	if err != nil {
		return nil, err
	}

	return debts, nil
}

func (r *PostgresRepository) UpdateDebt(ctx context.Context, debt *models.Debt) error {
	debt.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE debts SET type = $1, name = $2, amount = $3, is_included_in_total = $4,
			due_date = $5, updated_at = $6
		WHERE id = $7 AND user_id = $8
	`

	_, err := r.db.ExecContext(ctx, query,
		debt.Type, debt.Name, debt.Amount, debt.IsIncludedInTotal,
		debt.DueDate, debt.UpdatedAt, debt.ID, debt.UserID)
	return err
}

func (r *PostgresRepository) DeleteDebt(ctx context.Context, id, userID string) error {
	query := `DELETE FROM debts WHERE id = $1 AND user_id = $2`
	_, err := r.db.ExecContext(ctx, query, id, userID)
	return err
}

// PayDebt records the payoff transaction, adjusts the paying account's
// balance and shrinks or removes the debt, all atomically. A positive
// remaining amount keeps the debt with the reduced amount; zero or less
// deletes it.
func (r *PostgresRepository) PayDebt(
	ctx context.Context,
	debt *models.Debt,
	payment *models.Transaction,
	remaining decimal.Decimal,
) error {
	deltas, err := balance.Effect(payment)
	if err != nil {
		return err
	}

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

	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	payment.CreatedAt = now
	payment.UpdatedAt = now

	_, err = tx.ExecContext(ctx, insertTransactionQuery,
		payment.ID, payment.UserID, payment.AccountID, payment.CategoryID,
		payment.Amount, payment.Type, payment.Date, payment.Description,
		payment.ToAccountID, payment.SyncedAt, payment.CreatedAt, payment.UpdatedAt)
	if err != nil {
		return err
	}

	err = applyDeltasTx(ctx, tx, payment.UserID, deltas)
	if err != nil {
		return err
	}

	if remaining.IsPositive() {
		_, err = tx.ExecContext(ctx,
			`UPDATE debts SET amount = $1, updated_at = $2 WHERE id = $3 AND user_id = $4`,
			remaining, now, debt.ID, debt.UserID)
	} else {
		_, err = tx.ExecContext(ctx,
			`DELETE FROM debts WHERE id = $1 AND user_id = $2`, debt.ID, debt.UserID)
	}
	if err != nil {
		return err
	}

	return tx.Commit()
}
