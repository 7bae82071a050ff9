package api_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/cashcraft/server/internal/api/testutils"
	"github.com/cashcraft/server/internal/models"
)

func TestCategoryCRUD(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	headers := testutils.AuthHeaders(testCtx.TestUserJWT)

	// Create
	icon := "🏠"
	createReq := models.CreateCategoryRequest{
		Name: "Rent",
		Type: models.CategoryExpense,
		Icon: &icon,
	}

	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/v1/categories", createReq, headers)
	assert.Equal(t, http.StatusCreated, w.Code)

	var category models.Category
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &category))
	assert.Equal(t, "Rent", category.Name)
	assert.False(t, category.IsSystem)

	// Update
	newName := "Housing"
	w = testutils.PerformRequest(testCtx.Router, http.MethodPut,
		"/api/v1/categories/"+category.ID,
		models.UpdateCategoryRequest{Name: &newName}, headers)
	assert.Equal(t, http.StatusOK, w.Code)

	// Delete
	w = testutils.PerformRequest(testCtx.Router, http.MethodDelete,
		"/api/v1/categories/"+category.ID, nil, headers)
	assert.Equal(t, http.StatusOK, w.Code)

	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/v1/categories", nil, headers)
	assert.Equal(t, http.StatusOK, w.Code)
	var categories []models.Category
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &categories))
	assert.Empty(t, categories)
}

func TestFreeCategoryLimit(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	headers := testutils.AuthHeaders(testCtx.TestUserJWT)

	for i := 0; i < 5; i++ {
		w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/v1/categories",
			models.CreateCategoryRequest{
				Name: fmt.Sprintf("Category %d", i+1),
				Type: models.CategoryExpense,
			}, headers)
		assert.Equal(t, http.StatusCreated, w.Code)
	}

	// The sixth custom category is over the free limit
	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/v1/categories",
		models.CreateCategoryRequest{Name: "One Too Many", Type: models.CategoryExpense}, headers)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Premium lifts the limit
	testutils.MakeTestUserPremium(t, testCtx)
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/v1/categories",
		models.CreateCategoryRequest{Name: "Sixth Category", Type: models.CategoryExpense}, headers)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestSystemCategoryRules(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	// Register through the API so the system categories get seeded
	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/v1/auth/register",
		models.RegisterRequest{Email: "system@example.com", Password: "Password123"}, nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	var authResp models.AuthResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &authResp))
	headers := testutils.AuthHeaders(authResp.AccessToken)

	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/v1/categories", nil, headers)
	assert.Equal(t, http.StatusOK, w.Code)
	var categories []models.Category
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &categories))
	assert.NotEmpty(t, categories)
	system := categories[0]
	assert.True(t, system.IsSystem)

	// Renaming a system category is allowed
	newName := "Food"
	w = testutils.PerformRequest(testCtx.Router, http.MethodPut,
		"/api/v1/categories/"+system.ID,
		models.UpdateCategoryRequest{Name: &newName}, headers)
	assert.Equal(t, http.StatusOK, w.Code)

	// Changing anything else is not
	newIcon := "🍔"
	w = testutils.PerformRequest(testCtx.Router, http.MethodPut,
		"/api/v1/categories/"+system.ID,
		models.UpdateCategoryRequest{Icon: &newIcon}, headers)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Deleting a system category is not allowed either
	w = testutils.PerformRequest(testCtx.Router, http.MethodDelete,
		"/api/v1/categories/"+system.ID, nil, headers)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCannotDeleteCategoryInUse(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	headers := testutils.AuthHeaders(testCtx.TestUserJWT)
	account := testutils.CreateTestAccount(t, testCtx, "Wallet")

	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/v1/categories",
		models.CreateCategoryRequest{Name: "Coffee", Type: models.CategoryExpense}, headers)
	assert.Equal(t, http.StatusCreated, w.Code)
	var category models.Category
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &category))

	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/v1/transactions",
		models.CreateTransactionRequest{
			AccountID:  account.ID,
			CategoryID: &category.ID,
			Amount:     decimal.RequireFromString("4.50"),
			Type:       models.TransactionExpense,
			Date:       time.Now().UTC(),
		}, headers)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = testutils.PerformRequest(testCtx.Router, http.MethodDelete,
		"/api/v1/categories/"+category.ID, nil, headers)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResetCategories(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	headers := testutils.AuthHeaders(testCtx.TestUserJWT)

	w := testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/v1/categories",
		models.CreateCategoryRequest{Name: "Custom", Type: models.CategoryExpense}, headers)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = testutils.PerformRequest(testCtx.Router, http.MethodPost, "/api/v1/categories/reset", nil, headers)
	assert.Equal(t, http.StatusOK, w.Code)

	var categories []models.Category
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &categories))
	assert.Len(t, categories, 5)
	for _, c := range categories {
		assert.True(t, c.IsSystem)
	}
}
