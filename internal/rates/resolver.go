package rates

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cashcraft/server/internal/models"
	"github.com/cashcraft/server/internal/utils"
)

// ErrRateNotFound is returned when no direct, reverse or bridged rate can be
// resolved for a currency pair
var ErrRateNotFound = errors.New("exchange rate not found")

const (
	// staleAfter is the freshness window for cache entries
	staleAfter = 24 * time.Hour
	// minCacheEntries is the population below which the whole cache is
	// considered under-populated and refreshed
	minCacheEntries = 100
)

// SupportedCurrencies is the fixed list of currencies the app serves
var SupportedCurrencies = []string{
	"USD", "EUR", "GBP", "RUB", "JPY", "CNY", "INR", "BRL", "CAD", "AUD",
	"KRW", "MXN", "TRY", "UAH", "PLN", "THB", "SGD", "CHF", "KZT", "BYN",
	"UZS", "GEL", "AMD", "AZN", "SAR", "AED", "IDR", "MYR", "VND", "PHP",
	"NZD", "HKD", "SEK", "NOK", "DKK", "CZK", "HUF",
}

// popularBases get direct cross rates precomputed on refresh, bounding cache
// population cost to popular x supported instead of supported squared
var popularBases = []string{"EUR", "GBP", "RUB", "CNY", "JPY", "KZT", "UAH", "BYN", "TRY", "PLN"}

// Store is the slice of the repository the resolver needs
type Store interface {
	GetRate(ctx context.Context, base, target string) (*models.RateCacheEntry, error)
	UpsertRates(ctx context.Context, entries []models.RateCacheEntry) error
	CountRates(ctx context.Context) (int, error)
	LatestRateUpdate(ctx context.Context) (*time.Time, error)
}

// Resolver answers currency-pair rate queries from the cache, refreshing
// from the provider when the cache is stale or under-populated
type Resolver struct {
	store    Store
	provider Provider
	logger   *utils.Logger

	refreshMu sync.Mutex // serializes full cache refreshes
}

// NewResolver creates a resolver over the given store and provider
func NewResolver(store Store, provider Provider, logger *utils.Logger) *Resolver {
	return &Resolver{
		store:    store,
		provider: provider,
		logger:   logger,
	}
}

// IsSupported reports whether the currency is in the supported list
func IsSupported(currency string) bool {
	for _, c := range SupportedCurrencies {
		if c == currency {
			return true
		}
	}
	return false
}

// GetRate resolves the exchange rate for a currency pair. Resolution order:
// identity, fresh direct cache hit, full refresh plus one retry, reverse
// pair reciprocal, USD-bridged cross rate. Returns ErrRateNotFound when
// every step fails.
func (r *Resolver) GetRate(ctx context.Context, from, to string) (float64, error) {
	if from == to {
		return 1, nil
	}

	// Direct cache lookup
	cached, err := r.store.GetRate(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("error reading rate cache: %w", err)
	}
	if cached != nil && cached.Rate > 0 && time.Since(cached.LastUpdated) < staleAfter {
		return cached.Rate, nil
	}

	// Cache miss or stale entry: refresh everything if due, then retry once
	needsUpdate, err := r.NeedsUpdate(ctx)
	if err != nil {
		return 0, err
	}
	if needsUpdate {
		if err := r.Refresh(ctx); err != nil {
			r.logger.Error("rate cache refresh failed: %v", err)
		} else {
			cached, err = r.store.GetRate(ctx, from, to)
			if err != nil {
				return 0, fmt.Errorf("error reading rate cache: %w", err)
			}
			if cached != nil && cached.Rate > 0 {
				return cached.Rate, nil
			}
		}
	}

	// Reverse pair reciprocal
	reverse, err := r.store.GetRate(ctx, to, from)
	if err != nil {
		return 0, fmt.Errorf("error reading rate cache: %w", err)
	}
	if reverse != nil && reverse.Rate > 0 {
		return 1 / reverse.Rate, nil
	}

	// Bridge via USD. Each leg has USD on one side, so the recursion is
	// bounded to one hop.
	if from != "USD" && to != "USD" {
		fromToUSD, err := r.GetRate(ctx, from, "USD")
		if err != nil && !errors.Is(err, ErrRateNotFound) {
			return 0, err
		}
		usdToTarget, err2 := r.GetRate(ctx, "USD", to)
		if err2 != nil && !errors.Is(err2, ErrRateNotFound) {
			return 0, err2
		}

		if err == nil && err2 == nil {
			crossRate := fromToUSD * usdToTarget
			entry := models.RateCacheEntry{
				BaseCurrency:   from,
				TargetCurrency: to,
				Rate:           crossRate,
				Source:         models.RateCalculated,
				LastUpdated:    time.Now().UTC(),
			}
			if err := r.store.UpsertRates(ctx, []models.RateCacheEntry{entry}); err != nil {
				r.logger.Error("failed to cache cross rate %s->%s: %v", from, to, err)
			}
			return crossRate, nil
		}
	}

	return 0, ErrRateNotFound
}

// NeedsUpdate reports whether the cache is under-populated or older than the
// freshness window
func (r *Resolver) NeedsUpdate(ctx context.Context) (bool, error) {
	count, err := r.store.CountRates(ctx)
	if err != nil {
		return false, fmt.Errorf("error counting rate cache: %w", err)
	}
	if count < minCacheEntries {
		return true, nil
	}

	latest, err := r.store.LatestRateUpdate(ctx)
	if err != nil {
		return false, fmt.Errorf("error reading rate cache age: %w", err)
	}
	if latest == nil {
		return true, nil
	}

	return time.Since(*latest) >= staleAfter, nil
}

// LastUpdate returns the most recent cache refresh time
func (r *Resolver) LastUpdate(ctx context.Context) (*time.Time, error) {
	return r.store.LatestRateUpdate(ctx)
}

// Refresh fetches the latest USD-based rates for every supported currency
// and rebuilds the cache: USD->X entries tagged fetched, plus precomputed
// cross rates for the popular base currencies tagged calculated
func (r *Resolver) Refresh(ctx context.Context) error {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()

	fetched, err := r.provider.Latest(ctx, SupportedCurrencies)
	if err != nil {
		return fmt.Errorf("error fetching rates from provider: %w", err)
	}

	now := time.Now().UTC()
	entries := make([]models.RateCacheEntry, 0, len(fetched)*(len(popularBases)+1))

	for currency, rate := range fetched {
		if currency == "USD" || rate <= 0 {
			continue
		}
		entries = append(entries, models.RateCacheEntry{
			BaseCurrency:   "USD",
			TargetCurrency: currency,
			Rate:           rate,
			Source:         models.RateFetched,
			LastUpdated:    now,
		})
	}

	for _, base := range popularBases {
		baseRate, ok := fetched[base]
		if !ok || baseRate <= 0 {
			continue
		}
		for _, target := range SupportedCurrencies {
			targetRate, ok := fetched[target]
			if target == base || !ok || targetRate <= 0 {
				continue
			}
			entries = append(entries, models.RateCacheEntry{
				BaseCurrency:   base,
				TargetCurrency: target,
				Rate:           targetRate / baseRate,
				Source:         models.RateCalculated,
				LastUpdated:    now,
			})
		}
	}

	if err := r.store.UpsertRates(ctx, entries); err != nil {
		return fmt.Errorf("error storing refreshed rates: %w", err)
	}

	r.logger.Info("refreshed %d currency rates", len(entries))
	return nil
}

// RefreshIfStale refreshes the cache only when NeedsUpdate says so, and
// reports whether a refresh ran
func (r *Resolver) RefreshIfStale(ctx context.Context) (bool, error) {
	needsUpdate, err := r.NeedsUpdate(ctx)
	if err != nil {
		return false, err
	}
	if !needsUpdate {
		return false, nil
	}
	return true, r.Refresh(ctx)
}

// Start refreshes the cache once if stale and then keeps it warm on the
// given interval until the context is cancelled
func (r *Resolver) Start(ctx context.Context, interval time.Duration) {
	if _, err := r.RefreshIfStale(ctx); err != nil {
		r.logger.Error("initial rate refresh failed: %v", err)
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := r.RefreshIfStale(ctx); err != nil {
					r.logger.Error("scheduled rate refresh failed: %v", err)
				}
			}
		}
	}()
}
