package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cashcraft/server/internal/models"
)

func validUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// sanitizeSyncData drops records that cannot be stored, instead of failing
// the whole batch: every record needs a valid UUID id, transactions also
// need a valid account id. A malformed category reference on a transaction
// is cleared rather than dropping the transaction. Returns the number of
// records dropped.
func sanitizeSyncData(data *models.SyncData, logf func(format string, v ...interface{})) int {
	skipped := 0

	accounts := data.Accounts[:0]
	for _, acc := range data.Accounts {
		if !validUUID(acc.ID) {
			logf("sync: skipping account with malformed id %q", acc.ID)
			skipped++
			continue
		}
		accounts = append(accounts, acc)
	}
	data.Accounts = accounts

	categories := data.Categories[:0]
	for _, cat := range data.Categories {
		if !validUUID(cat.ID) {
			logf("sync: skipping category with malformed id %q", cat.ID)
			skipped++
			continue
		}
		categories = append(categories, cat)
	}
	data.Categories = categories

	transactions := data.Transactions[:0]
	for _, trx := range data.Transactions {
		if !validUUID(trx.ID) {
			logf("sync: skipping transaction with malformed id %q", trx.ID)
			skipped++
			continue
		}
		if !validUUID(trx.AccountID) {
			logf("sync: skipping transaction %s with malformed account id %q", trx.ID, trx.AccountID)
			skipped++
			continue
		}
		if trx.ToAccountID != nil && !validUUID(*trx.ToAccountID) {
			logf("sync: skipping transaction %s with malformed target account id %q", trx.ID, *trx.ToAccountID)
			skipped++
			continue
		}
		if trx.CategoryID != nil && !validUUID(*trx.CategoryID) {
			logf("sync: clearing malformed category id %q on transaction %s", *trx.CategoryID, trx.ID)
			trx.CategoryID = nil
		}
		transactions = append(transactions, trx)
	}
	data.Transactions = transactions

	debts := data.Debts[:0]
	for _, debt := range data.Debts {
		if !validUUID(debt.ID) {
			logf("sync: skipping debt with malformed id %q", debt.ID)
			skipped++
			continue
		}
		debts = append(debts, debt)
	}
	data.Debts = debts

	return skipped
}

// PushSync applies a client batch: records are upserted by id in dependency
// order inside one transaction, with malformed records dropped up front
func (s *DefaultService) PushSync(ctx context.Context, userID string, data models.SyncData) (*models.SyncPushResponse, error) {
	skipped := sanitizeSyncData(&data, s.logger.Info)

	syncTime := time.Now().UTC()
	if err := s.repo.SyncBatch(ctx, userID, &data, syncTime); err != nil {
		return nil, fmt.Errorf("error applying sync batch: %w", err)
	}

	return &models.SyncPushResponse{
		Success:  true,
		SyncTime: syncTime,
		Skipped:  skipped,
	}, nil
}

// DownloadSync returns the user's full server-side state
func (s *DefaultService) DownloadSync(ctx context.Context, userID string) (*models.SyncDownloadResponse, error) {
	data, err := s.repo.SnapshotUserData(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading user data: %w", err)
	}

	return &models.SyncDownloadResponse{
		Accounts:     data.Accounts,
		Categories:   data.Categories,
		Transactions: data.Transactions,
		Debts:        data.Debts,
		LastSyncAt:   time.Now().UTC(),
		UserID:       userID,
	}, nil
}

func (s *DefaultService) SyncStatus(ctx context.Context, userID string) (*models.SyncStatusResponse, error) {
	counts, err := s.repo.CountEntities(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error counting entities: %w", err)
	}

	lastSyncAt, err := s.repo.LastSyncedAt(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting last sync time: %w", err)
	}

	status := "never_synced"
	if lastSyncAt != nil {
		status = "synced"
	}

	return &models.SyncStatusResponse{
		Counts:     *counts,
		LastSyncAt: lastSyncAt,
		Status:     status,
	}, nil
}

// WipeData removes all of the user's data. The account itself survives and
// gets the default seed back so the app remains usable.
func (s *DefaultService) WipeData(ctx context.Context, userID string) error {
	if err := s.repo.WipeUserData(ctx, userID); err != nil {
		return fmt.Errorf("error wiping user data: %w", err)
	}

	if err := s.seedUserData(ctx, userID); err != nil {
		return err
	}

	return nil
}
