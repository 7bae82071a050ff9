package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cashcraft/server/internal/models"
)

// Sync upsert statements. Each is keyed by (id, owner): the conflict guard
// makes an id collision with another user's row a no-op instead of an
// ownership hijack.
const (
	syncUpsertAccountQuery = `
		INSERT INTO accounts (id, user_id, name, type, balance, currency, exchange_rate,
			card_number, color, icon, is_default, is_included_in_total, target_amount,
			credit_start_date, credit_term, credit_rate, credit_payment_type,
			credit_initial_amount, synced_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $20)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, type = EXCLUDED.type, balance = EXCLUDED.balance,
			currency = EXCLUDED.currency, exchange_rate = EXCLUDED.exchange_rate,
			card_number = EXCLUDED.card_number, color = EXCLUDED.color, icon = EXCLUDED.icon,
			is_default = EXCLUDED.is_default, is_included_in_total = EXCLUDED.is_included_in_total,
			target_amount = EXCLUDED.target_amount, credit_start_date = EXCLUDED.credit_start_date,
			credit_term = EXCLUDED.credit_term, credit_rate = EXCLUDED.credit_rate,
			credit_payment_type = EXCLUDED.credit_payment_type,
			credit_initial_amount = EXCLUDED.credit_initial_amount,
			synced_at = EXCLUDED.synced_at, updated_at = EXCLUDED.updated_at
		WHERE accounts.user_id = EXCLUDED.user_id
	`

	syncUpsertCategoryQuery = `
		INSERT INTO categories (id, user_id, name, type, icon, color, is_system,
			synced_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, type = EXCLUDED.type, icon = EXCLUDED.icon,
			color = EXCLUDED.color, is_system = EXCLUDED.is_system,
			synced_at = EXCLUDED.synced_at, updated_at = EXCLUDED.updated_at
		WHERE categories.user_id = EXCLUDED.user_id
	`

	syncUpsertTransactionQuery = `
		INSERT INTO transactions (id, user_id, account_id, category_id, amount, type,
			date, description, to_account_id, synced_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		ON CONFLICT (id) DO UPDATE SET
			account_id = EXCLUDED.account_id, category_id = EXCLUDED.category_id,
			amount = EXCLUDED.amount, type = EXCLUDED.type, date = EXCLUDED.date,
			description = EXCLUDED.description, to_account_id = EXCLUDED.to_account_id,
			synced_at = EXCLUDED.synced_at, updated_at = EXCLUDED.updated_at
		WHERE transactions.user_id = EXCLUDED.user_id
	`

	syncUpsertDebtQuery = `
		INSERT INTO debts (id, user_id, type, name, amount, is_included_in_total,
			due_date, synced_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		ON CONFLICT (id) DO UPDATE SET
			type = EXCLUDED.type, name = EXCLUDED.name, amount = EXCLUDED.amount,
			is_included_in_total = EXCLUDED.is_included_in_total, due_date = EXCLUDED.due_date,
			synced_at = EXCLUDED.synced_at, updated_at = EXCLUDED.updated_at
		WHERE debts.user_id = EXCLUDED.user_id
	`
)

// SyncBatch upserts a pushed batch for the user in dependency order:
// accounts, then categories, then transactions, then debts. Everything runs
// in one database transaction; any failure rolls back the whole batch.
func (r *PostgresRepository) SyncBatch(
	ctx context.Context,
	userID string,
	data *models.SyncData,
	syncedAt time.Time,
) error {
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

	for i := range data.Accounts {
		acc := &data.Accounts[i]
		_, err = tx.ExecContext(ctx, syncUpsertAccountQuery,
			acc.ID, userID, acc.Name, acc.Type, acc.Balance, acc.Currency,
			acc.ExchangeRate, acc.CardNumber, acc.Color, acc.Icon, acc.IsDefault,
			acc.IsIncludedInTotal, acc.TargetAmount, acc.CreditStartDate,
			acc.CreditTerm, acc.CreditRate, acc.CreditPaymentType,
			acc.CreditInitialAmount, syncedAt, syncedAt)
		if err != nil {
			return err
		}
	}

	for i := range data.Categories {
		cat := &data.Categories[i]
		_, err = tx.ExecContext(ctx, syncUpsertCategoryQuery,
			cat.ID, userID, cat.Name, cat.Type, cat.Icon, cat.Color,
			cat.IsSystem, syncedAt, syncedAt)
		if err != nil {
			return err
		}
	}

	for i := range data.Transactions {
		trx := &data.Transactions[i]
		_, err = tx.ExecContext(ctx, syncUpsertTransactionQuery,
			trx.ID, userID, trx.AccountID, trx.CategoryID, trx.Amount, trx.Type,
			trx.Date, trx.Description, trx.ToAccountID, syncedAt, syncedAt)
		if err != nil {
			return err
		}
	}

	for i := range data.Debts {
		debt := &data.Debts[i]
		_, err = tx.ExecContext(ctx, syncUpsertDebtQuery,
			debt.ID, userID, debt.Type, debt.Name, debt.Amount,
			debt.IsIncludedInTotal, debt.DueDate, syncedAt, syncedAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SnapshotUserData returns the full current state of the user's four entity
// collections for a pull
func (r *PostgresRepository) SnapshotUserData(ctx context.Context, userID string) (*models.SyncData, error) {
	data := &models.SyncData{
		Accounts:     []models.Account{},
		Categories:   []models.Category{},
		Transactions: []models.Transaction{},
		Debts:        []models.Debt{},
	}

	err := r.db.SelectContext(ctx, &data.Accounts,
		`SELECT * FROM accounts WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}

	err = r.db.SelectContext(ctx, &data.Categories,
		`SELECT * FROM categories WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}

	err = r.db.SelectContext(ctx, &data.Transactions,
		`SELECT * FROM transactions WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}

	err = r.db.SelectContext(ctx, &data.Debts,
		`SELECT * FROM debts WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}

	return data, nil
}

func (r *PostgresRepository) CountEntities(ctx context.Context, userID string) (*models.SyncCounts, error) {
	var counts models.SyncCounts

	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM accounts WHERE user_id = $1),
			(SELECT COUNT(*) FROM categories WHERE user_id = $1),
			(SELECT COUNT(*) FROM transactions WHERE user_id = $1),
			(SELECT COUNT(*) FROM debts WHERE user_id = $1)`,
		userID).Scan(&counts.Accounts, &counts.Categories, &counts.Transactions, &counts.Debts)
	if err != nil {
		return nil, err
	}

	return &counts, nil
}

// LastSyncedAt answers "when did this user last sync": the max synced_at
// stamp across all four entity types, or nil when nothing has been synced
func (r *PostgresRepository) LastSyncedAt(ctx context.Context, userID string) (*time.Time, error) {
	var latest sql.NullTime
	err := r.db.GetContext(ctx, &latest, `
		SELECT MAX(synced_at) FROM (
			SELECT synced_at FROM accounts WHERE user_id = $1
			UNION ALL SELECT synced_at FROM categories WHERE user_id = $1
			UNION ALL SELECT synced_at FROM transactions WHERE user_id = $1
			UNION ALL SELECT synced_at FROM debts WHERE user_id = $1
		) stamps`,
		userID)
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

// WipeUserData deletes everything the user owns in one transaction: used for
// a full account reset
func (r *PostgresRepository) WipeUserData(ctx context.Context, userID string) error {
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

	statements := []string{
		`DELETE FROM transactions WHERE user_id = $1`,
		`DELETE FROM debts WHERE user_id = $1`,
		`DELETE FROM accounts WHERE user_id = $1`,
		`DELETE FROM categories WHERE user_id = $1`,
		`DELETE FROM refresh_tokens WHERE user_id = $1`,
	}

	for _, stmt := range statements {
		_, err = tx.ExecContext(ctx, stmt, userID)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}
