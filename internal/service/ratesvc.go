package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cashcraft/server/internal/models"
	"github.com/cashcraft/server/internal/rates"
)

// Exchange rate methods
func (s *DefaultService) GetExchangeRate(ctx context.Context, from, to string) (float64, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)

	if !rates.IsSupported(from) || !rates.IsSupported(to) {
		return 0, fmt.Errorf("%w: unsupported currency", ErrValidation)
	}

	return s.resolver.GetRate(ctx, from, to)
}

func (s *DefaultService) GetRatesLastUpdate(ctx context.Context) (time.Time, error) {
	latest, err := s.resolver.LastUpdate(ctx)
	if err != nil {
		return time.Time{}, fmt.Errorf("error getting rates last update: %w", err)
	}
	if latest == nil {
		return time.Time{}, ErrNotFound
	}
	return *latest, nil
}

// UpdateRates forces a staleness check and reports whether a refresh ran
func (s *DefaultService) UpdateRates(ctx context.Context) (bool, error) {
	return s.resolver.RefreshIfStale(ctx)
}

func (s *DefaultService) GetUserRates(ctx context.Context, userID string) ([]models.RateCacheEntry, error) {
	entries, err := s.repo.GetUserRates(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting user rates: %w", err)
	}
	if entries == nil {
		entries = []models.RateCacheEntry{}
	}
	return entries, nil
}

// SaveUserRate stores a manual per-user rate. These live alongside the shared
// cache and are served only through the user rate endpoints; the resolver
// keeps reading the shared rows.
func (s *DefaultService) SaveUserRate(
	ctx context.Context,
	userID string,
	req models.SaveUserRateRequest,
) (*models.RateCacheEntry, error) {
	from := strings.ToUpper(req.FromCurrency)
	to := strings.ToUpper(req.ToCurrency)

	if from == to {
		return nil, fmt.Errorf("%w: currencies must differ", ErrValidation)
	}
	if req.Rate <= 0 {
		return nil, fmt.Errorf("%w: rate must be positive", ErrValidation)
	}

	entry := &models.RateCacheEntry{
		BaseCurrency:   from,
		TargetCurrency: to,
		UserID:         userID,
		Rate:           req.Rate,
		Source:         models.RateManual,
		LastUpdated:    time.Now().UTC(),
	}

	if err := s.repo.UpsertUserRate(ctx, entry); err != nil {
		return nil, fmt.Errorf("error saving user rate: %w", err)
	}

	return entry, nil
}

func (s *DefaultService) DeleteUserRate(ctx context.Context, userID, from, to string) error {
	err := s.repo.DeleteUserRate(ctx, userID, strings.ToUpper(from), strings.ToUpper(to))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("error deleting user rate: %w", err)
	}
	return nil
}
