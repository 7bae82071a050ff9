package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cashcraft/server/internal/models"
)

// Account methods
func (s *DefaultService) GetAccounts(ctx context.Context, userID string) ([]models.Account, error) {
	accounts, err := s.repo.GetAccounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting accounts: %w", err)
	}
	return accounts, nil
}

func (s *DefaultService) CreateAccount(
	ctx context.Context,
	userID string,
	req models.CreateAccountRequest,
) (*models.Account, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}

	// Free-tier account cap; premium lifts it
	if !user.IsPremiumActive() {
		count, err := s.repo.CountAccounts(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("error counting accounts: %w", err)
		}
		if count >= freeAccountLimit {
			return nil, ErrAccountLimit
		}
	}

	currency := req.Currency
	if currency == "" {
		currency = "RUB"
	}
	includedInTotal := true
	if req.IsIncludedInTotal != nil {
		includedInTotal = *req.IsIncludedInTotal
	}

	account := &models.Account{
		ID:                  req.ID,
		UserID:              userID,
		Name:                req.Name,
		Type:                req.Type,
		Balance:             req.Balance,
		Currency:            currency,
		ExchangeRate:        1,
		CardNumber:          req.CardNumber,
		Color:               req.Color,
		Icon:                req.Icon,
		IsDefault:           req.IsDefault,
		IsIncludedInTotal:   includedInTotal,
		TargetAmount:        req.TargetAmount,
		CreditStartDate:     req.CreditStartDate,
		CreditTerm:          req.CreditTerm,
		CreditRate:          req.CreditRate,
		CreditPaymentType:   req.CreditPaymentType,
		CreditInitialAmount: req.CreditInitialAmount,
	}

	if err := s.repo.CreateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("error creating account: %w", err)
	}

	return account, nil
}

func (s *DefaultService) UpdateAccount(
	ctx context.Context,
	userID string,
	accountID string,
	req models.UpdateAccountRequest,
) (*models.Account, error) {
	account, err := s.repo.GetAccount(ctx, accountID, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting account: %w", err)
	}
	if account == nil {
		return nil, ErrNotFound
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.Type != nil {
		if !req.Type.Valid() {
			return nil, fmt.Errorf("%w: unknown account type %q", ErrValidation, *req.Type)
		}
		account.Type = *req.Type
	}
	if req.Balance != nil {
		account.Balance = *req.Balance
	}
	if req.Currency != nil {
		account.Currency = *req.Currency
	}
	if req.ExchangeRate != nil {
		account.ExchangeRate = *req.ExchangeRate
	}
	if req.CardNumber != nil {
		account.CardNumber = req.CardNumber
	}
	if req.Color != nil {
		account.Color = req.Color
	}
	if req.Icon != nil {
		account.Icon = req.Icon
	}
	if req.IsDefault != nil {
		account.IsDefault = *req.IsDefault
	}
	if req.IsIncludedInTotal != nil {
		account.IsIncludedInTotal = *req.IsIncludedInTotal
	}

	if err := s.repo.UpdateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("error updating account: %w", err)
	}

	return account, nil
}

func (s *DefaultService) DeleteAccount(ctx context.Context, userID, accountID string) error {
	account, err := s.repo.GetAccount(ctx, accountID, userID)
	if err != nil {
		return fmt.Errorf("error getting account: %w", err)
	}
	if account == nil {
		return ErrNotFound
	}

	// A user must always retain at least one account
	count, err := s.repo.CountAccounts(ctx, userID)
	if err != nil {
		return fmt.Errorf("error counting accounts: %w", err)
	}
	if count == 1 {
		return ErrLastAccount
	}

	if err := s.repo.DeleteAccount(ctx, accountID, userID); err != nil {
		return fmt.Errorf("error deleting account: %w", err)
	}

	return nil
}

// GetAccountStats totals included balances, converting each account to the
// base currency through its explicit exchange_rate field
func (s *DefaultService) GetAccountStats(ctx context.Context, userID string) (*models.AccountStatsResponse, error) {
	accounts, err := s.repo.GetAccounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting accounts: %w", err)
	}

	totalBalance := decimal.Zero
	balancesByCurrency := make(map[string]decimal.Decimal)

	for _, account := range accounts {
		if !account.IsIncludedInTotal {
			continue
		}
		rate := decimal.NewFromFloat(account.ExchangeRate)
		totalBalance = totalBalance.Add(account.Balance.Mul(rate))
		balancesByCurrency[account.Currency] = balancesByCurrency[account.Currency].Add(account.Balance)
	}

	return &models.AccountStatsResponse{
		TotalBalance:       totalBalance,
		BalancesByCurrency: balancesByCurrency,
		AccountsCount:      len(accounts),
	}, nil
}
