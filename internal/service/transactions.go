package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cashcraft/server/internal/models"
)

// checkTransactionAccounts verifies that the source account (and for
// transfers the distinct destination account) belongs to the user
func (s *DefaultService) checkTransactionAccounts(ctx context.Context, userID string, trx *models.Transaction) error {
	account, err := s.repo.GetAccount(ctx, trx.AccountID, userID)
	if err != nil {
		return fmt.Errorf("error getting account: %w", err)
	}
	if account == nil {
		return ErrNotFound
	}

	if trx.Type == models.TransactionTransfer {
		if trx.ToAccountID == nil || *trx.ToAccountID == "" {
			return fmt.Errorf("%w: target account is required for transfers", ErrValidation)
		}
		if *trx.ToAccountID == trx.AccountID {
			return fmt.Errorf("%w: cannot transfer to the same account", ErrValidation)
		}
		toAccount, err := s.repo.GetAccount(ctx, *trx.ToAccountID, userID)
		if err != nil {
			return fmt.Errorf("error getting target account: %w", err)
		}
		if toAccount == nil {
			return ErrNotFound
		}
	}

	return nil
}

// Transaction methods
func (s *DefaultService) GetTransactions(
	ctx context.Context,
	userID string,
	filter models.TransactionFilter,
) (*models.TransactionListResponse, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}

	transactions, total, err := s.repo.GetTransactions(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("error getting transactions: %w", err)
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}

	return &models.TransactionListResponse{
		Transactions: transactions,
		Total:        total,
		Limit:        filter.Limit,
		Offset:       filter.Offset,
	}, nil
}

// CreateTransaction creates a transaction and applies its balance effect. A
// client-supplied id that already exists for this user turns the call into
// an update; the boolean result reports whether a new record was created.
func (s *DefaultService) CreateTransaction(
	ctx context.Context,
	userID string,
	req models.CreateTransactionRequest,
) (*models.Transaction, bool, error) {
	if !req.Amount.IsPositive() {
		return nil, false, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	trx := &models.Transaction{
		ID:          req.ID,
		UserID:      userID,
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		Type:        req.Type,
		Date:        req.Date,
		Description: req.Description,
		ToAccountID: req.ToAccountID,
	}

	if err := s.checkTransactionAccounts(ctx, userID, trx); err != nil {
		return nil, false, err
	}

	if req.ID != "" {
		existing, err := s.repo.GetTransaction(ctx, req.ID, userID)
		if err != nil {
			return nil, false, fmt.Errorf("error getting transaction: %w", err)
		}
		if existing != nil {
			if err := s.repo.UpdateTransaction(ctx, trx); err != nil {
				return nil, false, fmt.Errorf("error updating transaction: %w", err)
			}
			return trx, false, nil
		}
	}

	if err := s.repo.CreateTransaction(ctx, trx); err != nil {
		return nil, false, fmt.Errorf("error creating transaction: %w", err)
	}

	return trx, true, nil
}

// UpdateTransaction patches a transaction. The repository reverses the old
// balance effect and applies the new one atomically.
func (s *DefaultService) UpdateTransaction(
	ctx context.Context,
	userID string,
	transactionID string,
	req models.UpdateTransactionRequest,
) (*models.Transaction, error) {
	trx, err := s.repo.GetTransaction(ctx, transactionID, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting transaction: %w", err)
	}
	if trx == nil {
		return nil, ErrNotFound
	}

	if req.AccountID != nil {
		trx.AccountID = *req.AccountID
	}
	if req.CategoryID != nil {
		trx.CategoryID = req.CategoryID
	}
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
		}
		trx.Amount = *req.Amount
	}
	if req.Type != nil {
		if !req.Type.Valid() {
			return nil, fmt.Errorf("%w: unknown transaction type %q", ErrValidation, *req.Type)
		}
		trx.Type = *req.Type
	}
	if req.Date != nil {
		trx.Date = *req.Date
	}
	if req.Description != nil {
		trx.Description = req.Description
	}
	if req.ToAccountID != nil {
		trx.ToAccountID = req.ToAccountID
	}

	if err := s.checkTransactionAccounts(ctx, userID, trx); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateTransaction(ctx, trx); err != nil {
		return nil, fmt.Errorf("error updating transaction: %w", err)
	}

	return trx, nil
}

func (s *DefaultService) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	trx, err := s.repo.GetTransaction(ctx, transactionID, userID)
	if err != nil {
		return fmt.Errorf("error getting transaction: %w", err)
	}
	if trx == nil {
		return ErrNotFound
	}

	if err := s.repo.DeleteTransaction(ctx, transactionID, userID); err != nil {
		return fmt.Errorf("error deleting transaction: %w", err)
	}

	return nil
}

// GetTransactionStats totals income and expense converted to the base
// currency via each account's explicit exchange_rate, with per-category
// breakdowns
func (s *DefaultService) GetTransactionStats(ctx context.Context, userID string) (*models.TransactionStatsResponse, error) {
	transactions, _, err := s.repo.GetTransactions(ctx, userID, models.TransactionFilter{})
	if err != nil {
		return nil, fmt.Errorf("error getting transactions: %w", err)
	}

	accounts, err := s.repo.GetAccounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting accounts: %w", err)
	}
	ratesByAccount := make(map[string]decimal.Decimal, len(accounts))
	for _, account := range accounts {
		ratesByAccount[account.ID] = decimal.NewFromFloat(account.ExchangeRate)
	}

	totalIncome := decimal.Zero
	totalExpense := decimal.Zero
	categoriesStats := make(map[string]decimal.Decimal)

	for _, trx := range transactions {
		rate, ok := ratesByAccount[trx.AccountID]
		if !ok {
			rate = decimal.NewFromInt(1)
		}
		amount := trx.Amount.Mul(rate)

		switch trx.Type {
		case models.TransactionIncome:
			totalIncome = totalIncome.Add(amount)
		case models.TransactionExpense:
			totalExpense = totalExpense.Add(amount)
		}

		if trx.CategoryID != nil {
			categoriesStats[*trx.CategoryID] = categoriesStats[*trx.CategoryID].Add(amount)
		}
	}

	return &models.TransactionStatsResponse{
		TotalIncome:       totalIncome,
		TotalExpense:      totalExpense,
		Balance:           totalIncome.Sub(totalExpense),
		CategoriesStats:   categoriesStats,
		TransactionsCount: len(transactions),
	}, nil
}
