package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/cashcraft/server/internal/api"
	"github.com/cashcraft/server/internal/config"
	"github.com/cashcraft/server/internal/models"
	"github.com/cashcraft/server/internal/rates"
	"github.com/cashcraft/server/internal/repository"
	"github.com/cashcraft/server/internal/service"
	"github.com/cashcraft/server/internal/utils"
)

// TestContext holds all dependencies for tests
type TestContext struct {
	Router      *gin.Engine
	Repository  repository.Repository
	Service     service.Service
	JWTSecret   []byte
	DB          *sqlx.DB
	TestUserID  string
	TestUserJWT string
}

// SetupTestContext creates a new test context with initialized dependencies
func SetupTestContext(t *testing.T) *TestContext {
	// Load configuration from environment
	cfg := config.LoadConfig()

	// Override with test-specific config
	if cfg.Database.DBName == "cashcraft" && cfg.Database.TestDBName != "" {
		cfg.Database.DBName = cfg.Database.TestDBName
	} else if cfg.Database.TestDBName == "" {
		// Fallback to hardcoded test DB if not in environment
		cfg.Database.DBName = "cashcraft_test"
	}

	// Use a test JWT secret
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = "test-secret-key"
	}

	// Set up database
	db, err := config.SetupDatabase(cfg)
	assert.NoError(t, err, "Failed to set up test database")

	logger := utils.NewLogger()

	// Create repository
	repo := repository.NewPostgresRepository(db)

	// The provider is never reached in tests; rate endpoints under test only
	// touch the cache
	provider := rates.NewOpenExchangeRates(cfg.Rates.ProviderURL, "")
	resolver := rates.NewResolver(repo, provider, logger)

	// Create service
	svc := service.NewDefaultService(repo, resolver, logger,
		cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)

	// Create API handler
	handler := api.NewHandler(svc)

	// Set up Gin router
	gin.SetMode(gin.TestMode)
	router := gin.Default()

	// Add middleware for JWT secret
	router.Use(func(c *gin.Context) {
		c.Set("jwtSecret", []byte(cfg.Auth.JWTSecret))
		c.Next()
	})

	// Set up routes
	handler.SetupRoutes(router)

	// Create test user if needed
	testUserID, token := createTestUser(t, repo, cfg.Auth.JWTSecret)

	return &TestContext{
		Router:      router,
		Repository:  repo,
		Service:     svc,
		JWTSecret:   []byte(cfg.Auth.JWTSecret),
		DB:          db,
		TestUserID:  testUserID,
		TestUserJWT: token,
	}
}

// CleanupTestContext cleans up test resources
func CleanupTestContext(t *TestContext) {
	// Clean up database
	if t.DB != nil {
		cleanupTestDatabase(nil, t.Repository)
		t.DB.Close()
	}
}

// cleanupTestDatabase removes any existing test users and data
func cleanupTestDatabase(t *testing.T, repo repository.Repository) {
	// Execute cleanup SQL directly through the DB connection
	if pgRepo, ok := repo.(*repository.PostgresRepository); ok {
		db := pgRepo.GetDB()

		tables := []string{
			"transactions",
			"debts",
			"accounts",
			"categories",
			"refresh_tokens",
			"currency_cache",
			"users",
		}

		for _, table := range tables {
			_, err := db.Exec("DELETE FROM " + table)
			if t != nil && err != nil {
				t.Logf("Warning: Failed to clean %s: %v", table, err)
			}
		}
	}
}

// Helper functions
func createTestUser(t *testing.T, repo repository.Repository, jwtSecret string) (string, string) {
	// Clean up any existing test users first
	cleanupTestDatabase(t, repo)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("testpassword"), bcrypt.DefaultCost)

	user := &models.User{
		ID:          uuid.New().String(),
		Email:       "testuser@example.com",
		DisplayName: "Test User",
		Password:    string(hashedPassword),
	}

	err := repo.CreateUser(context.Background(), user)
	assert.NoError(t, err, "Failed to create test user")

	// Generate JWT token with the provided secret key
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": user.ID,
		"exp": time.Now().Add(24 * time.Hour).Unix(),
		"iat": time.Now().Unix(),
	})

	tokenString, err := token.SignedString([]byte(jwtSecret))
	assert.NoError(t, err, "Failed to generate JWT token")

	return user.ID, tokenString
}

// MakeTestUserPremium flags the test user as premium with no expiry
func MakeTestUserPremium(t *testing.T, ctx *TestContext) {
	_, err := ctx.DB.Exec(
		`UPDATE users SET is_premium = TRUE, premium_expires_at = NULL WHERE id = $1`,
		ctx.TestUserID)
	assert.NoError(t, err, "Failed to mark test user premium")
}

// CreateTestAccount creates an account for the test user through the repository
func CreateTestAccount(t *testing.T, ctx *TestContext, name string) *models.Account {
	account := &models.Account{
		ID:                uuid.New().String(),
		UserID:            ctx.TestUserID,
		Name:              name,
		Type:              models.AccountCash,
		Currency:          "RUB",
		ExchangeRate:      1,
		IsIncludedInTotal: true,
	}
	err := ctx.Repository.CreateAccount(context.Background(), account)
	assert.NoError(t, err, "Failed to create test account")
	return account
}

// PerformRequest executes an HTTP request against the router
func PerformRequest(r http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer

	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// AuthHeaders returns headers with Authorization token
func AuthHeaders(token string) map[string]string {
	return map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", token),
	}
}
