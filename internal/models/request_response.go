package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Request models
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"displayName"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type GoogleLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name"`
	GoogleID string `json:"googleId" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type CreateAccountRequest struct {
	ID                  string              `json:"id"`
	Name                string              `json:"name" binding:"required"`
	Type                AccountType         `json:"type" binding:"required,oneof=cash card bank savings debt credit"`
	Balance             decimal.Decimal     `json:"balance"`
	Currency            string              `json:"currency"`
	CardNumber          *string             `json:"cardNumber"`
	Color               *string             `json:"color"`
	Icon                *string             `json:"icon"`
	IsDefault           bool                `json:"isDefault"`
	IsIncludedInTotal   *bool               `json:"isIncludedInTotal"`
	TargetAmount        decimal.NullDecimal `json:"targetAmount"`
	CreditStartDate     *time.Time          `json:"creditStartDate"`
	CreditTerm          *int                `json:"creditTerm"`
	CreditRate          *float64            `json:"creditRate"`
	CreditPaymentType   *string             `json:"creditPaymentType"`
	CreditInitialAmount decimal.NullDecimal `json:"creditInitialAmount"`
}

// UpdateAccountRequest is a partial patch; nil fields are left unchanged
type UpdateAccountRequest struct {
	Name              *string          `json:"name"`
	Type              *AccountType     `json:"type"`
	Balance           *decimal.Decimal `json:"balance"`
	Currency          *string          `json:"currency"`
	ExchangeRate      *float64         `json:"exchangeRate"`
	CardNumber        *string          `json:"cardNumber"`
	Color             *string          `json:"color"`
	Icon              *string          `json:"icon"`
	IsDefault         *bool            `json:"isDefault"`
	IsIncludedInTotal *bool            `json:"isIncludedInTotal"`
}

type CreateCategoryRequest struct {
	ID    string       `json:"id"`
	Name  string       `json:"name" binding:"required"`
	Type  CategoryType `json:"type" binding:"required,oneof=income expense"`
	Icon  *string      `json:"icon"`
	Color *string      `json:"color"`
}

type UpdateCategoryRequest struct {
	Name  *string       `json:"name"`
	Type  *CategoryType `json:"type"`
	Icon  *string       `json:"icon"`
	Color *string       `json:"color"`
}

type CreateTransactionRequest struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"accountId" binding:"required"`
	CategoryID  *string         `json:"categoryId"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Type        TransactionType `json:"type" binding:"required,oneof=income expense transfer"`
	Date        time.Time       `json:"date" binding:"required"`
	Description *string         `json:"description"`
	ToAccountID *string         `json:"toAccountId"`
}

type UpdateTransactionRequest struct {
	AccountID   *string          `json:"accountId"`
	CategoryID  *string          `json:"categoryId"`
	Amount      *decimal.Decimal `json:"amount"`
	Type        *TransactionType `json:"type"`
	Date        *time.Time       `json:"date"`
	Description *string          `json:"description"`
	ToAccountID *string          `json:"toAccountId"`
}

// TransactionFilter narrows transaction listings
type TransactionFilter struct {
	AccountID  string
	CategoryID string
	Type       TransactionType
	StartDate  *time.Time
	EndDate    *time.Time
	Limit      int
	Offset     int
}

type CreateDebtRequest struct {
	ID                string          `json:"id"`
	Type              DebtType        `json:"type" binding:"required,oneof=owed_to_me owed_by_me"`
	Name              string          `json:"name" binding:"required"`
	Amount            decimal.Decimal `json:"amount" binding:"required"`
	IsIncludedInTotal *bool           `json:"isIncludedInTotal"`
	DueDate           *time.Time      `json:"dueDate"`
}

type UpdateDebtRequest struct {
	Type              *DebtType        `json:"type"`
	Name              *string          `json:"name"`
	Amount            *decimal.Decimal `json:"amount"`
	IsIncludedInTotal *bool            `json:"isIncludedInTotal"`
	DueDate           *time.Time       `json:"dueDate"`
}

type PayDebtRequest struct {
	AccountID   string           `json:"accountId" binding:"required"`
	Amount      *decimal.Decimal `json:"amount"`
	PaymentDate *time.Time       `json:"paymentDate"`
}

type SaveUserRateRequest struct {
	FromCurrency string  `json:"fromCurrency" binding:"required"`
	ToCurrency   string  `json:"toCurrency" binding:"required"`
	Rate         float64 `json:"rate" binding:"required"`
}

// SyncData carries one push batch of client-side records
type SyncData struct {
	Accounts     []Account     `json:"accounts"`
	Categories   []Category    `json:"categories"`
	Transactions []Transaction `json:"transactions"`
	Debts        []Debt        `json:"debts"`
}

type SyncPushRequest struct {
	Data SyncData `json:"data"`
}

// Response models
type UserInfo struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	IsPremium   bool   `json:"isPremium"`
	IsGuest     bool   `json:"isGuest"`
}

type AuthResponse struct {
	User         UserInfo `json:"user"`
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
}

type TokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type AccountStatsResponse struct {
	TotalBalance       decimal.Decimal            `json:"totalBalance"`
	BalancesByCurrency map[string]decimal.Decimal `json:"balancesByCurrency"`
	AccountsCount      int                        `json:"accountsCount"`
}

type TransactionListResponse struct {
	Transactions []Transaction `json:"transactions"`
	Total        int           `json:"total"`
	Limit        int           `json:"limit"`
	Offset       int           `json:"offset"`
}

type TransactionStatsResponse struct {
	TotalIncome       decimal.Decimal            `json:"totalIncome"`
	TotalExpense      decimal.Decimal            `json:"totalExpense"`
	Balance           decimal.Decimal            `json:"balance"`
	CategoriesStats   map[string]decimal.Decimal `json:"categoriesStats"`
	TransactionsCount int                        `json:"transactionsCount"`
}

type PayDebtResponse struct {
	Message       string          `json:"message"`
	Transaction   *Transaction    `json:"transaction"`
	RemainingDebt decimal.Decimal `json:"remainingDebt"`
}

type DebtStatsResponse struct {
	TotalOwedToMe decimal.Decimal `json:"totalOwedToMe"`
	TotalOwedByMe decimal.Decimal `json:"totalOwedByMe"`
	NetDebt       decimal.Decimal `json:"netDebt"`
	DebtsCount    int             `json:"debtsCount"`
}

type RateResponse struct {
	Rate float64 `json:"rate"`
	From string  `json:"from"`
	To   string  `json:"to"`
}

type LastUpdateResponse struct {
	LastUpdate time.Time `json:"lastUpdate"`
}

type SyncPushResponse struct {
	Success  bool      `json:"success"`
	SyncTime time.Time `json:"syncTime"`
	Skipped  int       `json:"skipped"`
}

type SyncDownloadResponse struct {
	Accounts     []Account     `json:"accounts"`
	Categories   []Category    `json:"categories"`
	Transactions []Transaction `json:"transactions"`
	Debts        []Debt        `json:"debts"`
	LastSyncAt   time.Time     `json:"lastSyncAt"`
	UserID       string        `json:"userId"`
}

type SyncCounts struct {
	Accounts     int `json:"accounts"`
	Categories   int `json:"categories"`
	Transactions int `json:"transactions"`
	Debts        int `json:"debts"`
}

type SyncStatusResponse struct {
	Counts     SyncCounts `json:"counts"`
	LastSyncAt *time.Time `json:"lastSyncAt"`
	Status     string     `json:"status"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
