package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cashcraft/server/internal/models"
	"github.com/cashcraft/server/internal/rates"
	"github.com/cashcraft/server/internal/repository"
	"github.com/cashcraft/server/internal/utils"
)

// Business-rule errors, mapped to HTTP statuses at the handler boundary
var (
	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrAccountLimit       = errors.New("free users can have maximum 3 accounts")
	ErrCategoryLimit      = errors.New("free users can create maximum 5 custom categories")
	ErrLastAccount        = errors.New("cannot delete the last account")
	ErrCategoryInUse      = errors.New("category is used by transactions")
	ErrSystemCategory     = errors.New("cannot delete system categories")
	ErrSystemRenameOnly   = errors.New("system categories can only be renamed")
	ErrValidation         = errors.New("validation failed")
)

// Free-tier limits
const (
	freeAccountLimit  = 3
	freeCategoryLimit = 5
)

// Service defines all the business logic operations
type Service interface {
	// Authentication
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	GuestLogin(ctx context.Context) (*models.AuthResponse, error)
	GoogleLogin(ctx context.Context, req models.GoogleLoginRequest) (*models.AuthResponse, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*models.TokenPairResponse, error)
	Logout(ctx context.Context, refreshToken string) error

	// Accounts
	GetAccounts(ctx context.Context, userID string) ([]models.Account, error)
	CreateAccount(ctx context.Context, userID string, req models.CreateAccountRequest) (*models.Account, error)
	UpdateAccount(ctx context.Context, userID, accountID string, req models.UpdateAccountRequest) (*models.Account, error)
	DeleteAccount(ctx context.Context, userID, accountID string) error
	GetAccountStats(ctx context.Context, userID string) (*models.AccountStatsResponse, error)

	// Categories
	GetCategories(ctx context.Context, userID string) ([]models.Category, error)
	CreateCategory(ctx context.Context, userID string, req models.CreateCategoryRequest) (*models.Category, error)
	UpdateCategory(ctx context.Context, userID, categoryID string, req models.UpdateCategoryRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, userID, categoryID string) error
	ResetCategories(ctx context.Context, userID string) ([]models.Category, error)

	// Transactions
	GetTransactions(ctx context.Context, userID string, filter models.TransactionFilter) (*models.TransactionListResponse, error)
	CreateTransaction(ctx context.Context, userID string, req models.CreateTransactionRequest) (*models.Transaction, bool, error)
	UpdateTransaction(ctx context.Context, userID, transactionID string, req models.UpdateTransactionRequest) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, transactionID string) error
	GetTransactionStats(ctx context.Context, userID string) (*models.TransactionStatsResponse, error)

	// Debts
	GetDebts(ctx context.Context, userID string) ([]models.Debt, error)
	CreateDebt(ctx context.Context, userID string, req models.CreateDebtRequest) (*models.Debt, bool, error)
	UpdateDebt(ctx context.Context, userID, debtID string, req models.UpdateDebtRequest) (*models.Debt, error)
	DeleteDebt(ctx context.Context, userID, debtID string) error
	PayDebt(ctx context.Context, userID, debtID string, req models.PayDebtRequest) (*models.PayDebtResponse, error)
	GetDebtStats(ctx context.Context, userID string) (*models.DebtStatsResponse, error)

	// Exchange rates
	GetExchangeRate(ctx context.Context, from, to string) (float64, error)
	GetRatesLastUpdate(ctx context.Context) (time.Time, error)
	UpdateRates(ctx context.Context) (bool, error)
	GetUserRates(ctx context.Context, userID string) ([]models.RateCacheEntry, error)
	SaveUserRate(ctx context.Context, userID string, req models.SaveUserRateRequest) (*models.RateCacheEntry, error)
	DeleteUserRate(ctx context.Context, userID, from, to string) error

	// Sync
	PushSync(ctx context.Context, userID string, data models.SyncData) (*models.SyncPushResponse, error)
	DownloadSync(ctx context.Context, userID string) (*models.SyncDownloadResponse, error)
	SyncStatus(ctx context.Context, userID string) (*models.SyncStatusResponse, error)
	WipeData(ctx context.Context, userID string) error
}

// DefaultService implements the Service interface
type DefaultService struct {
	repo            repository.Repository
	resolver        *rates.Resolver
	logger          *utils.Logger
	jwtSecret       []byte
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

// NewDefaultService creates a new DefaultService
func NewDefaultService(
	repo repository.Repository,
	resolver *rates.Resolver,
	logger *utils.Logger,
	jwtSecret string,
	accessTokenTTL time.Duration,
	refreshTokenTTL time.Duration,
) Service {
	return &DefaultService{
		repo:            repo,
		resolver:        resolver,
		logger:          logger,
		jwtSecret:       []byte(jwtSecret),
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
	}
}

// Helper methods
func (s *DefaultService) generateAccessToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": now.Add(s.accessTokenTTL).Unix(),
		"iat": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *DefaultService) generateRefreshToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  userID,
		"type": "refresh",
		"exp":  now.Add(s.refreshTokenTTL).Unix(),
		"iat":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
