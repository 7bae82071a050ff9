package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cashcraft/server/internal/models"
)

// Debt methods
func (s *DefaultService) GetDebts(ctx context.Context, userID string) ([]models.Debt, error) {
	debts, err := s.repo.GetDebts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting debts: %w", err)
	}
	return debts, nil
}

// CreateDebt creates a debt. A client-supplied id that already exists for
// this user turns the call into an update; the boolean result reports
// whether a new record was created.
func (s *DefaultService) CreateDebt(
	ctx context.Context,
	userID string,
	req models.CreateDebtRequest,
) (*models.Debt, bool, error) {
	if !req.Amount.IsPositive() {
		return nil, false, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	includedInTotal := true
	if req.IsIncludedInTotal != nil {
		includedInTotal = *req.IsIncludedInTotal
	}

	debt := &models.Debt{
		ID:                req.ID,
		UserID:            userID,
		Type:              req.Type,
		Name:              req.Name,
		Amount:            req.Amount,
		IsIncludedInTotal: includedInTotal,
		DueDate:           req.DueDate,
	}

	if req.ID != "" {
		existing, err := s.repo.GetDebt(ctx, req.ID, userID)
		if err != nil {
			return nil, false, fmt.Errorf("error getting debt: %w", err)
		}
		if existing != nil {
			debt.CreatedAt = existing.CreatedAt
			if err := s.repo.UpdateDebt(ctx, debt); err != nil {
				return nil, false, fmt.Errorf("error updating debt: %w", err)
			}
			return debt, false, nil
		}
	}

	if err := s.repo.CreateDebt(ctx, debt); err != nil {
		return nil, false, fmt.Errorf("error creating debt: %w", err)
	}

	return debt, true, nil
}

func (s *DefaultService) UpdateDebt(
	ctx context.Context,
	userID string,
	debtID string,
	req models.UpdateDebtRequest,
) (*models.Debt, error) {
	debt, err := s.repo.GetDebt(ctx, debtID, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting debt: %w", err)
	}
	if debt == nil {
		return nil, ErrNotFound
	}

	if req.Type != nil {
		if !req.Type.Valid() {
			return nil, fmt.Errorf("%w: unknown debt type %q", ErrValidation, *req.Type)
		}
		debt.Type = *req.Type
	}
	if req.Name != nil {
		debt.Name = *req.Name
	}
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
		}
		debt.Amount = *req.Amount
	}
	if req.IsIncludedInTotal != nil {
		debt.IsIncludedInTotal = *req.IsIncludedInTotal
	}
	if req.DueDate != nil {
		debt.DueDate = req.DueDate
	}

	if err := s.repo.UpdateDebt(ctx, debt); err != nil {
		return nil, fmt.Errorf("error updating debt: %w", err)
	}

	return debt, nil
}

func (s *DefaultService) DeleteDebt(ctx context.Context, userID, debtID string) error {
	debt, err := s.repo.GetDebt(ctx, debtID, userID)
	if err != nil {
		return fmt.Errorf("error getting debt: %w", err)
	}
	if debt == nil {
		return ErrNotFound
	}

	if err := s.repo.DeleteDebt(ctx, debtID, userID); err != nil {
		return fmt.Errorf("error deleting debt: %w", err)
	}

	return nil
}

// PayDebt settles a debt, fully or partially, from the given account.
// Receiving owed money is recorded as income, paying off owed money as an
// expense; a fully settled debt is removed.
func (s *DefaultService) PayDebt(
	ctx context.Context,
	userID string,
	debtID string,
	req models.PayDebtRequest,
) (*models.PayDebtResponse, error) {
	debt, err := s.repo.GetDebt(ctx, debtID, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting debt: %w", err)
	}
	if debt == nil {
		return nil, ErrNotFound
	}

	account, err := s.repo.GetAccount(ctx, req.AccountID, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting account: %w", err)
	}
	if account == nil {
		return nil, ErrNotFound
	}

	amount := debt.Amount
	if req.Amount != nil {
		amount = *req.Amount
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", ErrValidation)
	}

	paymentType := models.TransactionExpense
	if debt.Type == models.DebtOwedToMe {
		paymentType = models.TransactionIncome
	}

	date := time.Now().UTC()
	if req.PaymentDate != nil {
		date = *req.PaymentDate
	}

	description := fmt.Sprintf("Debt payment: %s", debt.Name)
	payment := &models.Transaction{
		UserID:      userID,
		AccountID:   req.AccountID,
		Amount:      amount,
		Type:        paymentType,
		Date:        date,
		Description: &description,
	}

	remaining := debt.Amount.Sub(amount)
	if err := s.repo.PayDebt(ctx, debt, payment, remaining); err != nil {
		return nil, fmt.Errorf("error paying debt: %w", err)
	}

	message := "Debt partially paid"
	if !remaining.IsPositive() {
		message = "Debt fully paid"
		remaining = decimal.Zero
	}

	return &models.PayDebtResponse{
		Message:       message,
		Transaction:   payment,
		RemainingDebt: remaining,
	}, nil
}

// GetDebtStats nets what others owe the user against what the user owes,
// counting only debts included in totals
func (s *DefaultService) GetDebtStats(ctx context.Context, userID string) (*models.DebtStatsResponse, error) {
	debts, err := s.repo.GetDebts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting debts: %w", err)
	}

	stats := &models.DebtStatsResponse{DebtsCount: len(debts)}
	for _, debt := range debts {
		if !debt.IsIncludedInTotal {
			continue
		}
		switch debt.Type {
		case models.DebtOwedToMe:
			stats.TotalOwedToMe = stats.TotalOwedToMe.Add(debt.Amount)
		case models.DebtOwedByMe:
			stats.TotalOwedByMe = stats.TotalOwedByMe.Add(debt.Amount)
		}
	}
	stats.NetDebt = stats.TotalOwedToMe.Sub(stats.TotalOwedByMe)

	return stats, nil
}
