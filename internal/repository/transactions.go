package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cashcraft/server/internal/balance"
	"github.com/cashcraft/server/internal/models"
)

// ErrAccountMissing is returned when a balance adjustment targets an account
// that does not exist or belongs to another user. The surrounding database
// transaction is rolled back.
var ErrAccountMissing = errors.New("account for balance adjustment not found")

const insertTransactionQuery = `
	INSERT INTO transactions (id, user_id, account_id, category_id, amount, type,
		date, description, to_account_id, synced_at, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`

// applyDeltasTx adjusts account balances inside an open transaction. Every
// delta must hit exactly one account row owned by the user.
func applyDeltasTx(ctx context.Context, tx *sql.Tx, userID string, deltas []balance.Delta) error {
	for _, d := range deltas {
		res, err := tx.ExecContext(ctx,
			`UPDATE accounts SET balance = balance + $1, updated_at = $2 WHERE id = $3 AND user_id = $4`,
			d.Amount, time.Now().UTC(), d.AccountID, userID)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("%w: %s", ErrAccountMissing, d.AccountID)
		}
	}
	return nil
}

// Transaction repository methods

// CreateTransaction inserts the record and applies its balance effect to the
// involved accounts atomically
func (r *PostgresRepository) CreateTransaction(ctx context.Context, trx *models.Transaction) error {
	deltas, err := balance.Effect(trx)
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

	if trx.ID == "" {
		trx.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	trx.CreatedAt = now
	trx.UpdatedAt = now

	_, err = tx.ExecContext(ctx, insertTransactionQuery,
		trx.ID, trx.UserID, trx.AccountID, trx.CategoryID, trx.Amount, trx.Type,
		trx.Date, trx.Description, trx.ToAccountID, trx.SyncedAt, trx.CreatedAt, trx.UpdatedAt)
	if err != nil {
		return err
	}

	err = applyDeltasTx(ctx, tx, trx.UserID, deltas)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PostgresRepository) GetTransaction(ctx context.Context, id, userID string) (*models.Transaction, error) {
	query := `SELECT * FROM transactions WHERE id = $1 AND user_id = $2`

	var trx models.Transaction
	err := r.db.GetContext(ctx, &trx, query, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Transaction not found
		}
		return nil, err
	}

	return &trx, nil
}

// GetTransactions lists transactions matching the filter together with the
// total match count (before limit/offset)
func (r *PostgresRepository) GetTransactions(
	ctx context.Context,
	userID string,
	filter models.TransactionFilter,
) ([]models.Transaction, int, error) {
	where := `WHERE user_id = $1`
	args := []interface{}{userID}

	if filter.AccountID != "" {
		args = append(args, filter.AccountID)
		where += fmt.Sprintf(` AND (account_id = $%d OR to_account_id = $%d)`, len(args), len(args))
	}
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		where += fmt.Sprintf(` AND category_id = $%d`, len(args))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		where += fmt.Sprintf(` AND type = $%d`, len(args))
	}
	if filter.StartDate != nil && filter.EndDate != nil {
		args = append(args, *filter.StartDate)
		where += fmt.Sprintf(` AND date >= $%d`, len(args))
		args = append(args, *filter.EndDate)
		where += fmt.Sprintf(` AND date <= $%d`, len(args))
	}

	var total int
	err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM transactions `+where, args...)
	if err != nil {
		return nil, 0, err
	}

	query := `SELECT * FROM transactions ` + where + ` ORDER BY date DESC, created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	var transactions []models.Transaction
	err = r.db.SelectContext(ctx, &transactions, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return transactions, total, nil
}

// UpdateTransaction reverses the stored record's balance effect, applies the
// new one and rewrites the row, all in one database transaction
func (r *PostgresRepository) UpdateTransaction(ctx context.Context, trx *models.Transaction) error {
	newDeltas, err := balance.Effect(trx)
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

	var old models.Transaction
	err = tx.QueryRowContext(ctx,
		`SELECT id, user_id, account_id, amount, type, to_account_id FROM transactions
		WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		trx.ID, trx.UserID).Scan(&old.ID, &old.UserID, &old.AccountID, &old.Amount, &old.Type, &old.ToAccountID)
	if err != nil {
		return err
	}

	oldDeltas, err := balance.Effect(&old)
	if err != nil {
		return err
	}

	err = applyDeltasTx(ctx, tx, trx.UserID, balance.Invert(oldDeltas))
	if err != nil {
		return err
	}

	trx.UpdatedAt = time.Now().UTC()

	_, err = tx.ExecContext(ctx, `
		UPDATE transactions SET account_id = $1, category_id = $2, amount = $3, type = $4,
			date = $5, description = $6, to_account_id = $7, updated_at = $8
		WHERE id = $9 AND user_id = $10`,
		trx.AccountID, trx.CategoryID, trx.Amount, trx.Type, trx.Date,
		trx.Description, trx.ToAccountID, trx.UpdatedAt, trx.ID, trx.UserID)
	if err != nil {
		return err
	}

	err = applyDeltasTx(ctx, tx, trx.UserID, newDeltas)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteTransaction removes the record and applies the exact inverse of its
// balance effect
func (r *PostgresRepository) DeleteTransaction(ctx context.Context, id, userID string) error {
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

	var trx models.Transaction
	err = tx.QueryRowContext(ctx,
		`SELECT id, user_id, account_id, amount, type, to_account_id FROM transactions
		WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		id, userID).Scan(&trx.ID, &trx.UserID, &trx.AccountID, &trx.Amount, &trx.Type, &trx.ToAccountID)
	if err != nil {
		return err
	}

	deltas, err := balance.Effect(&trx)
	if err != nil {
		return err
	}

	err = applyDeltasTx(ctx, tx, userID, balance.Invert(deltas))
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}

	return tx.Commit()
}
