package api_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/cashcraft/server/internal/api/testutils"
	"github.com/cashcraft/server/internal/models"
)

func TestSyncPushAndDownload(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	headers := testutils.AuthHeaders(testCtx.TestUserJWT)

	accountID := uuid.New().String()
	categoryID := uuid.New().String()
	push := models.SyncPushRequest{
		Data: models.SyncData{
			Accounts: []models.Account{
				{ID: accountID, Name: "Synced Wallet", Type: models.AccountCash,
					Currency: "RUB", ExchangeRate: 1,
					Balance: decimal.RequireFromString("120")},
			},
			Categories: []models.Category{
				{ID: categoryID, Name: "Synced Category", Type: models.CategoryExpense},
			},
			Transactions: []models.Transaction{
				{ID: uuid.New().String(), AccountID: accountID, CategoryID: &categoryID,
					Amount: decimal.RequireFromString("15"),
					Type:   models.TransactionExpense, Date: time.Now().UTC()},
			},
			Debts: []models.Debt{
				{ID: uuid.New().String(), Type: models.DebtOwedByMe, Name: "Synced Debt",
					Amount: decimal.RequireFromString("99"), IsIncludedInTotal: true},
			},
		},
	}

	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/v1/sync/upload", push, headers)
	assert.Equal(t, http.StatusOK, w.Code)

	var pushResp models.SyncPushResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &pushResp))
	assert.True(t, pushResp.Success)
	assert.Equal(t, 0, pushResp.Skipped)
	assert.False(t, pushResp.SyncTime.IsZero())

	// Download returns everything that was pushed
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/v1/sync/download", nil, headers)
	assert.Equal(t, http.StatusOK, w.Code)

	var downloadResp models.SyncDownloadResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &downloadResp))
	assert.Equal(t, testCtx.TestUserID, downloadResp.UserID)
	assert.Len(t, downloadResp.Accounts, 1)
	assert.Len(t, downloadResp.Categories, 1)
	assert.Len(t, downloadResp.Transactions, 1)
	assert.Len(t, downloadResp.Debts, 1)

	// Pushing the same batch again upserts instead of duplicating
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/v1/sync/upload", push, headers)
	assert.Equal(t, http.StatusOK, w.Code)

	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/v1/sync/download", nil, headers)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &downloadResp))
	assert.Len(t, downloadResp.Accounts, 1)
	assert.Len(t, downloadResp.Transactions, 1)
}

func TestSyncPushSkipsMalformedRecords(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	headers := testutils.AuthHeaders(testCtx.TestUserJWT)

	accountID := uuid.New().String()
	badCategory := "not-a-uuid"
	push := models.SyncPushRequest{
		Data: models.SyncData{
			Accounts: []models.Account{
				{ID: accountID, Name: "Good", Type: models.AccountCash, Currency: "RUB", ExchangeRate: 1},
				{ID: "broken-id", Name: "Bad", Type: models.AccountCash, Currency: "RUB", ExchangeRate: 1},
			},
			Transactions: []models.Transaction{
				// The malformed category reference is cleared, the record kept
				{ID: uuid.New().String(), AccountID: accountID, CategoryID: &badCategory,
					Amount: decimal.RequireFromString("5"),
					Type:   models.TransactionExpense, Date: time.Now().UTC()},
			},
		},
	}

	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/v1/sync/upload", push, headers)
	assert.Equal(t, http.StatusOK, w.Code)

	var pushResp models.SyncPushResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &pushResp))
	assert.True(t, pushResp.Success)
	assert.Equal(t, 1, pushResp.Skipped)

	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/v1/sync/download", nil, headers)
	assert.Equal(t, http.StatusOK, w.Code)

	var downloadResp models.SyncDownloadResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &downloadResp))
	assert.Len(t, downloadResp.Accounts, 1)
	if assert.Len(t, downloadResp.Transactions, 1) {
		assert.Nil(t, downloadResp.Transactions[0].CategoryID)
	}
}

func TestSyncIDCollisionWithAnotherUser(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	// A second user pushes an account
	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/v1/auth/register",
		models.RegisterRequest{Email: "other@example.com", Password: "Password123"}, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	var otherAuth models.AuthResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &otherAuth))

	accountID := uuid.New().String()
	push := models.SyncPushRequest{
		Data: models.SyncData{
			Accounts: []models.Account{
				{ID: accountID, Name: "Victim", Type: models.AccountCash, Currency: "RUB", ExchangeRate: 1},
			},
		},
	}
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/v1/sync/upload",
		push, testutils.AuthHeaders(otherAuth.AccessToken))
	assert.Equal(t, http.StatusOK, w.Code)

	// The test user pushes the same account id; the other user's row must
	// not be hijacked
	push.Data.Accounts[0].Name = "Hijacker"
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/v1/sync/upload",
		push, testutils.AuthHeaders(testCtx.TestUserJWT))
	assert.Equal(t, http.StatusOK, w.Code)

	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/v1/sync/download",
		nil, testutils.AuthHeaders(otherAuth.AccessToken))
	assert.Equal(t, http.StatusOK, w.Code)

	var downloadResp models.SyncDownloadResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &downloadResp))

	found := false
	for _, acc := range downloadResp.Accounts {
		if acc.ID == accountID {
			found = true
			assert.Equal(t, "Victim", acc.Name)
		}
	}
	assert.True(t, found)
}

func TestSyncStatus(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	headers := testutils.AuthHeaders(testCtx.TestUserJWT)

	// Nothing synced yet
	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/v1/sync/status", nil, headers)
	assert.Equal(t, http.StatusOK, w.Code)

	var status models.SyncStatusResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "never_synced", status.Status)
	assert.Nil(t, status.LastSyncAt)

	push := models.SyncPushRequest{
		Data: models.SyncData{
			Accounts: []models.Account{
				{ID: uuid.New().String(), Name: "Wallet", Type: models.AccountCash,
					Currency: "RUB", ExchangeRate: 1},
			},
		},
	}
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/v1/sync/upload", push, headers)
	assert.Equal(t, http.StatusOK, w.Code)

	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/v1/sync/status", nil, headers)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "synced", status.Status)
	assert.NotNil(t, status.LastSyncAt)
	assert.Equal(t, 1, status.Counts.Accounts)
}

func TestWipeDataRestoresSeed(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	// Register so seed data exists, then add more on top
	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/v1/auth/register",
		models.RegisterRequest{Email: "wipe@example.com", Password: "Password123"}, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	var authResp models.AuthResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &authResp))
	headers := testutils.AuthHeaders(authResp.AccessToken)

	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/v1/debts",
		models.CreateDebtRequest{Type: models.DebtOwedByMe, Name: "Doomed",
			Amount: decimal.RequireFromString("10")}, headers)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = testutils.PerformRequest(testCtx.Router, http.MethodDelete, "/api/v1/sync/wipe", nil, headers)
	assert.Equal(t, http.StatusOK, w.Code)

	// Everything is gone except the fresh seed
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/v1/sync/status", nil, headers)
	assert.Equal(t, http.StatusOK, w.Code)
	var status models.SyncStatusResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, 1, status.Counts.Accounts)
	assert.Equal(t, 5, status.Counts.Categories)
	assert.Equal(t, 0, status.Counts.Transactions)
	assert.Equal(t, 0, status.Counts.Debts)
}
