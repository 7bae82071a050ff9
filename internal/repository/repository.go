package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/cashcraft/server/internal/models"
)

// Repository interface defines the methods that any repository implementation must satisfy
type Repository interface {
	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	TouchLastLogin(ctx context.Context, userID string) error
	LinkGoogleID(ctx context.Context, userID, googleID string) error

	// Refresh token operations
	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	DeleteExpiredRefreshTokens(ctx context.Context) (int64, error)

	// Account operations
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccount(ctx context.Context, id, userID string) (*models.Account, error)
	GetAccounts(ctx context.Context, userID string) ([]models.Account, error)
	CountAccounts(ctx context.Context, userID string) (int, error)
	UpdateAccount(ctx context.Context, account *models.Account) error
	DeleteAccount(ctx context.Context, id, userID string) error

	// Category operations
	CreateCategory(ctx context.Context, category *models.Category) error
	GetCategory(ctx context.Context, id, userID string) (*models.Category, error)
	GetCategories(ctx context.Context, userID string) ([]models.Category, error)
	CountCustomCategories(ctx context.Context, userID string) (int, error)
	CountTransactionsByCategory(ctx context.Context, categoryID string) (int, error)
	UpdateCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, id, userID string) error
	DeleteCustomCategories(ctx context.Context, userID string) error

	// Transaction operations (balance deltas applied in the same tx)
	CreateTransaction(ctx context.Context, trx *models.Transaction) error
	GetTransaction(ctx context.Context, id, userID string) (*models.Transaction, error)
	GetTransactions(ctx context.Context, userID string, filter models.TransactionFilter) ([]models.Transaction, int, error)
	UpdateTransaction(ctx context.Context, trx *models.Transaction) error
	DeleteTransaction(ctx context.Context, id, userID string) error

	// Debt operations
	CreateDebt(ctx context.Context, debt *models.Debt) error
	GetDebt(ctx context.Context, id, userID string) (*models.Debt, error)
	GetDebts(ctx context.Context, userID string) ([]models.Debt, error)
	UpdateDebt(ctx context.Context, debt *models.Debt) error
	DeleteDebt(ctx context.Context, id, userID string) error
	PayDebt(ctx context.Context, debt *models.Debt, payment *models.Transaction, remaining decimal.Decimal) error

	// Rate cache operations
	GetRate(ctx context.Context, base, target string) (*models.RateCacheEntry, error)
	UpsertRates(ctx context.Context, entries []models.RateCacheEntry) error
	CountRates(ctx context.Context) (int, error)
	LatestRateUpdate(ctx context.Context) (*time.Time, error)
	GetUserRates(ctx context.Context, userID string) ([]models.RateCacheEntry, error)
	UpsertUserRate(ctx context.Context, entry *models.RateCacheEntry) error
	DeleteUserRate(ctx context.Context, userID, base, target string) error

	// Sync operations
	SyncBatch(ctx context.Context, userID string, data *models.SyncData, syncedAt time.Time) error
	SnapshotUserData(ctx context.Context, userID string) (*models.SyncData, error)
	CountEntities(ctx context.Context, userID string) (*models.SyncCounts, error)
	LastSyncedAt(ctx context.Context, userID string) (*time.Time, error)
	WipeUserData(ctx context.Context, userID string) error
}

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
	}
}

// GetDB returns the underlying database connection
func (r *PostgresRepository) GetDB() *sqlx.DB {
	return r.db
}
