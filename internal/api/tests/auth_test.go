package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cashcraft/server/internal/api/testutils"
	"github.com/cashcraft/server/internal/models"
)

func TestRegister(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	// Test case 1: Successful registration
	registerReq := models.RegisterRequest{
		Email:       "newuser@example.com",
		Password:    "Password123",
		DisplayName: "New User",
	}

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/v1/auth/register",
		registerReq,
		nil,
	)

	assert.Equal(t, http.StatusCreated, w.Code)

	var authResp models.AuthResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &authResp))
	assert.Equal(t, "newuser@example.com", authResp.User.Email)
	assert.NotEmpty(t, authResp.AccessToken)
	assert.NotEmpty(t, authResp.RefreshToken)

	// Registration seeds the default categories and a cash account
	headers := testutils.AuthHeaders(authResp.AccessToken)

	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/v1/categories", nil, headers)
	assert.Equal(t, http.StatusOK, w.Code)
	var categories []models.Category
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &categories))
	assert.Len(t, categories, 5)

	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/v1/accounts", nil, headers)
	assert.Equal(t, http.StatusOK, w.Code)
	var accounts []models.Account
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &accounts))
	assert.Len(t, accounts, 1)
	assert.Equal(t, "Cash", accounts[0].Name)

	// Test case 2: Duplicate email
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/v1/auth/register",
		registerReq,
		nil,
	)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Test case 3: Invalid request (password too short)
	invalidReq := models.RegisterRequest{
		Email:    "invalid@example.com",
		Password: "short",
	}

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/v1/auth/register",
		invalidReq,
		nil,
	)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	// Test case 1: Successful login
	loginReq := models.LoginRequest{
		Email:    "testuser@example.com",
		Password: "testpassword",
	}

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/v1/auth/login",
		loginReq,
		nil,
	)

	assert.Equal(t, http.StatusOK, w.Code)

	// Test case 2: Invalid credentials
	invalidLoginReq := models.LoginRequest{
		Email:    "testuser@example.com",
		Password: "wrongpassword",
	}

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/v1/auth/login",
		invalidLoginReq,
		nil,
	)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Test case 3: User not found
	nonExistentUserReq := models.LoginRequest{
		Email:    "nonexistent@example.com",
		Password: "testpassword",
	}

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/v1/auth/login",
		nonExistentUserReq,
		nil,
	)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGuestLogin(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/v1/auth/guest",
		nil,
		nil,
	)

	assert.Equal(t, http.StatusCreated, w.Code)

	var authResp models.AuthResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &authResp))
	assert.True(t, authResp.User.IsGuest)
	assert.NotEmpty(t, authResp.AccessToken)

	// Guest token works against protected endpoints
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/v1/accounts",
		nil,
		testutils.AuthHeaders(authResp.AccessToken),
	)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRefreshTokenRotation(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	registerReq := models.RegisterRequest{
		Email:    "rotation@example.com",
		Password: "Password123",
	}

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/v1/auth/register",
		registerReq,
		nil,
	)
	assert.Equal(t, http.StatusCreated, w.Code)

	var authResp models.AuthResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &authResp))

	// Test case 1: Valid refresh issues a new pair
	refreshReq := models.RefreshRequest{RefreshToken: authResp.RefreshToken}
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/v1/auth/refresh",
		refreshReq,
		nil,
	)
	assert.Equal(t, http.StatusOK, w.Code)

	var pair models.TokenPairResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &pair))
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, authResp.RefreshToken, pair.RefreshToken)

	// Test case 2: The old refresh token is dead after rotation
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/v1/auth/refresh",
		refreshReq,
		nil,
	)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Test case 3: A refresh token is not an access token
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/v1/accounts",
		nil,
		testutils.AuthHeaders(pair.RefreshToken),
	)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	registerReq := models.RegisterRequest{
		Email:    "logout@example.com",
		Password: "Password123",
	}

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/v1/auth/register",
		registerReq,
		nil,
	)
	assert.Equal(t, http.StatusCreated, w.Code)

	var authResp models.AuthResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &authResp))

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/v1/auth/logout",
		models.LogoutRequest{RefreshToken: authResp.RefreshToken},
		nil,
	)
	assert.Equal(t, http.StatusOK, w.Code)

	// The refresh token no longer works
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/v1/auth/refresh",
		models.RefreshRequest{RefreshToken: authResp.RefreshToken},
		nil,
	)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedEndpointsRequireAuth(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/v1/accounts", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/v1/accounts", nil,
		map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
