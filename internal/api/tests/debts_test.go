package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/cashcraft/server/internal/api/testutils"
	"github.com/cashcraft/server/internal/models"
)

func TestDebtCRUD(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	headers := testutils.AuthHeaders(testCtx.TestUserJWT)

	// Create
	createReq := models.CreateDebtRequest{
		Type:   models.DebtOwedByMe,
		Name:   "Car loan",
		Amount: decimal.RequireFromString("5000"),
	}

	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/v1/debts", createReq, headers)
	assert.Equal(t, http.StatusCreated, w.Code)

	var debt models.Debt
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &debt))
	assert.Equal(t, "Car loan", debt.Name)
	assert.True(t, debt.IsIncludedInTotal)

	// Update
	newAmount := decimal.RequireFromString("4500")
	w = testutils.PerformRequest(testCtx.Router, http.MethodPut,
		"/api/v1/debts/"+debt.ID,
		models.UpdateDebtRequest{Amount: &newAmount}, headers)
	assert.Equal(t, http.StatusOK, w.Code)

	var updated models.Debt
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.True(t, updated.Amount.Equal(newAmount))

	// Pushing the same id again updates in place
	createReq.ID = debt.ID
	createReq.Amount = decimal.RequireFromString("4000")
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/v1/debts", createReq, headers)
	assert.Equal(t, http.StatusOK, w.Code)

	// Delete
	w = testutils.PerformRequest(testCtx.Router, http.MethodDelete,
		"/api/v1/debts/"+debt.ID, nil, headers)
	assert.Equal(t, http.StatusOK, w.Code)

	w = testutils.PerformRequest(testCtx.Router, http.MethodDelete,
		"/api/v1/debts/"+uuid.New().String(), nil, headers)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPayDebtFully(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	headers := testutils.AuthHeaders(testCtx.TestUserJWT)
	account := testutils.CreateTestAccount(t, testCtx, "Wallet")

	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/v1/debts",
		models.CreateDebtRequest{
			Type:   models.DebtOwedToMe,
			Name:   "Lunch money",
			Amount: decimal.RequireFromString("30"),
		}, headers)
	assert.Equal(t, http.StatusCreated, w.Code)
	var debt models.Debt
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &debt))

	// No explicit amount settles the whole debt
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost,
		"/api/v1/debts/"+debt.ID+"/pay",
		models.PayDebtRequest{AccountID: account.ID}, headers)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.PayDebtResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.RemainingDebt.IsZero())
	if assert.NotNil(t, resp.Transaction) {
		// Money owed to me comes in as income
		assert.Equal(t, models.TransactionIncome, resp.Transaction.Type)
	}

	// The account got credited and the debt is gone
	assert.True(t, accountBalance(t, testCtx, account.ID).Equal(decimal.RequireFromString("30")))
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/v1/debts", nil, headers)
	assert.Equal(t, http.StatusOK, w.Code)
	var debts []models.Debt
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &debts))
	assert.Empty(t, debts)
}

func TestPayDebtPartially(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	headers := testutils.AuthHeaders(testCtx.TestUserJWT)
	account := testutils.CreateTestAccount(t, testCtx, "Wallet")

	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/v1/debts",
		models.CreateDebtRequest{
			Type:   models.DebtOwedByMe,
			Name:   "Rent arrears",
			Amount: decimal.RequireFromString("1000"),
		}, headers)
	assert.Equal(t, http.StatusCreated, w.Code)
	var debt models.Debt
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &debt))

	partial := decimal.RequireFromString("400")
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost,
		"/api/v1/debts/"+debt.ID+"/pay",
		models.PayDebtRequest{AccountID: account.ID, Amount: &partial}, headers)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.PayDebtResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.RemainingDebt.Equal(decimal.RequireFromString("600")))
	if assert.NotNil(t, resp.Transaction) {
		// Money I owe goes out as an expense
		assert.Equal(t, models.TransactionExpense, resp.Transaction.Type)
	}

	assert.True(t, accountBalance(t, testCtx, account.ID).Equal(decimal.RequireFromString("-400")))

	// The debt survives with the reduced amount
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/v1/debts", nil, headers)
	assert.Equal(t, http.StatusOK, w.Code)
	var debts []models.Debt
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &debts))
	if assert.Len(t, debts, 1) {
		assert.True(t, debts[0].Amount.Equal(decimal.RequireFromString("600")))
	}
}

func TestDebtStats(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	headers := testutils.AuthHeaders(testCtx.TestUserJWT)

	excluded := false
	for _, req := range []models.CreateDebtRequest{
		{Type: models.DebtOwedToMe, Name: "A", Amount: decimal.RequireFromString("100")},
		{Type: models.DebtOwedByMe, Name: "B", Amount: decimal.RequireFromString("40")},
		{Type: models.DebtOwedByMe, Name: "Hidden", Amount: decimal.RequireFromString("9999"),
			IsIncludedInTotal: &excluded},
	} {
		w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/v1/debts", req, headers)
		assert.Equal(t, http.StatusCreated, w.Code)
	}

	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/v1/debts/stats", nil, headers)
	assert.Equal(t, http.StatusOK, w.Code)

	var stats models.DebtStatsResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.True(t, stats.TotalOwedToMe.Equal(decimal.RequireFromString("100")))
	assert.True(t, stats.TotalOwedByMe.Equal(decimal.RequireFromString("40")))
	assert.True(t, stats.NetDebt.Equal(decimal.RequireFromString("60")))
	assert.Equal(t, 3, stats.DebtsCount)
}
