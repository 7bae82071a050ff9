package models

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// AccountType enumerates the kinds of accounts a user can hold
type AccountType string

const (
	AccountCash    AccountType = "cash"
	AccountCard    AccountType = "card"
	AccountBank    AccountType = "bank"
	AccountSavings AccountType = "savings"
	AccountDebt    AccountType = "debt"
	AccountCredit  AccountType = "credit"
)

// Valid reports whether the account type is one of the known values
func (t AccountType) Valid() bool {
	switch t {
	case AccountCash, AccountCard, AccountBank, AccountSavings, AccountDebt, AccountCredit:
		return true
	}
	return false
}

// CategoryType enumerates category directions
type CategoryType string

const (
	CategoryIncome  CategoryType = "income"
	CategoryExpense CategoryType = "expense"
)

func (t CategoryType) Valid() bool {
	return t == CategoryIncome || t == CategoryExpense
}

// TransactionType enumerates the kinds of transactions
type TransactionType string

const (
	TransactionIncome   TransactionType = "income"
	TransactionExpense  TransactionType = "expense"
	TransactionTransfer TransactionType = "transfer"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionIncome, TransactionExpense, TransactionTransfer:
		return true
	}
	return false
}

// DebtType enumerates the direction of a debt
type DebtType string

const (
	DebtOwedToMe DebtType = "owed_to_me"
	DebtOwedByMe DebtType = "owed_by_me"
)

func (t DebtType) Valid() bool {
	return t == DebtOwedToMe || t == DebtOwedByMe
}

// RateSource tags where a cached exchange rate came from
type RateSource string

const (
	RateFetched    RateSource = "fetched"
	RateManual     RateSource = "manual"
	RateCalculated RateSource = "calculated"
)

// User represents a user in the system
type User struct {
	ID               string     `db:"id" json:"id"`
	Email            string     `db:"email" json:"email"`
	Password         string     `db:"password" json:"-"` // Password hash, not returned in JSON
	DisplayName      string     `db:"display_name" json:"displayName"`
	IsPremium        bool       `db:"is_premium" json:"isPremium"`
	PremiumExpiresAt *time.Time `db:"premium_expires_at" json:"premiumExpiresAt,omitempty"`
	IsGuest          bool       `db:"is_guest" json:"isGuest"`
	GoogleID         *string    `db:"google_id" json:"-"`
	IsVerified       bool       `db:"is_verified" json:"isVerified"`
	LastLogin        *time.Time `db:"last_login" json:"lastLogin,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updatedAt"`
}

// IsPremiumActive reports whether the user's premium subscription is in
// effect. A premium flag with no expiry never expires.
func (u *User) IsPremiumActive() bool {
	if !u.IsPremium {
		return false
	}
	if u.PremiumExpiresAt == nil {
		return true
	}
	return time.Now().Before(*u.PremiumExpiresAt)
}

// Account represents a money account owned by a user
type Account struct {
	ID                  string              `db:"id" json:"id"`
	UserID              string              `db:"user_id" json:"userId"`
	Name                string              `db:"name" json:"name"`
	Type                AccountType         `db:"type" json:"type"`
	Balance             decimal.Decimal     `db:"balance" json:"balance"`
	Currency            string              `db:"currency" json:"currency"`
	ExchangeRate        float64             `db:"exchange_rate" json:"exchangeRate"`
	CardNumber          *string             `db:"card_number" json:"cardNumber,omitempty"`
	Color               *string             `db:"color" json:"color,omitempty"`
	Icon                *string             `db:"icon" json:"icon,omitempty"`
	IsDefault           bool                `db:"is_default" json:"isDefault"`
	IsIncludedInTotal   bool                `db:"is_included_in_total" json:"isIncludedInTotal"`
	TargetAmount        decimal.NullDecimal `db:"target_amount" json:"targetAmount,omitempty"`
	CreditStartDate     *time.Time          `db:"credit_start_date" json:"creditStartDate,omitempty"`
	CreditTerm          *int                `db:"credit_term" json:"creditTerm,omitempty"`
	CreditRate          *float64            `db:"credit_rate" json:"creditRate,omitempty"`
	CreditPaymentType   *string             `db:"credit_payment_type" json:"creditPaymentType,omitempty"`
	CreditInitialAmount decimal.NullDecimal `db:"credit_initial_amount" json:"creditInitialAmount,omitempty"`
	SyncedAt            *time.Time          `db:"synced_at" json:"syncedAt,omitempty"`
	CreatedAt           time.Time           `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time           `db:"updated_at" json:"updatedAt"`
}

// Credit payment schedules
const (
	CreditPaymentAnnuity        = "annuity"
	CreditPaymentDifferentiated = "differentiated"
)

// MonthlyPayment computes the monthly payment for a credit account, or nil
// when the account is not a credit or the credit fields are incomplete.
// For differentiated schedules the first (largest) payment is returned.
func (a *Account) MonthlyPayment() *float64 {
	if a.Type != AccountCredit || !a.CreditInitialAmount.Valid || a.CreditRate == nil || a.CreditTerm == nil || *a.CreditTerm <= 0 {
		return nil
	}

	principal := a.CreditInitialAmount.Decimal.InexactFloat64()
	monthlyRate := *a.CreditRate / 100 / 12
	term := float64(*a.CreditTerm)

	var payment float64
	if a.CreditPaymentType != nil && *a.CreditPaymentType == CreditPaymentAnnuity && monthlyRate > 0 {
		factor := math.Pow(1+monthlyRate, term)
		payment = principal * monthlyRate * factor / (factor - 1)
	} else {
		payment = principal/term + principal*monthlyRate
	}
	return &payment
}

// Category represents an income or expense category. System categories are
// seeded per user and protected from deletion.
type Category struct {
	ID        string       `db:"id" json:"id"`
	UserID    *string      `db:"user_id" json:"userId,omitempty"` // nil for shared system categories
	Name      string       `db:"name" json:"name"`
	Type      CategoryType `db:"type" json:"type"`
	Icon      *string      `db:"icon" json:"icon,omitempty"`
	Color     *string      `db:"color" json:"color,omitempty"`
	IsSystem  bool         `db:"is_system" json:"isSystem"`
	SyncedAt  *time.Time   `db:"synced_at" json:"syncedAt,omitempty"`
	CreatedAt time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time    `db:"updated_at" json:"updatedAt"`
}

// Transaction represents a single income, expense or transfer
type Transaction struct {
	ID          string          `db:"id" json:"id"`
	UserID      string          `db:"user_id" json:"userId"`
	AccountID   string          `db:"account_id" json:"accountId"`
	CategoryID  *string         `db:"category_id" json:"categoryId,omitempty"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Type        TransactionType `db:"type" json:"type"`
	Date        time.Time       `db:"date" json:"date"`
	Description *string         `db:"description" json:"description,omitempty"`
	ToAccountID *string         `db:"to_account_id" json:"toAccountId,omitempty"` // destination leg for transfers
	SyncedAt    *time.Time      `db:"synced_at" json:"syncedAt,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updatedAt"`
}

// Debt represents money owed to or by the user
type Debt struct {
	ID                string          `db:"id" json:"id"`
	UserID            string          `db:"user_id" json:"userId"`
	Type              DebtType        `db:"type" json:"type"`
	Name              string          `db:"name" json:"name"`
	Amount            decimal.Decimal `db:"amount" json:"amount"`
	IsIncludedInTotal bool            `db:"is_included_in_total" json:"isIncludedInTotal"`
	DueDate           *time.Time      `db:"due_date" json:"dueDate,omitempty"`
	SyncedAt          *time.Time      `db:"synced_at" json:"syncedAt,omitempty"`
	CreatedAt         time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updatedAt"`
}

// RefreshToken is a persisted refresh token issued at login
type RefreshToken struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Token     string    `db:"token" json:"token"`
	ExpiresAt time.Time `db:"expires_at" json:"expiresAt"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// IsExpired reports whether the refresh token has passed its expiry
func (t *RefreshToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// RateCacheEntry is a cached exchange rate for a currency pair. Global
// entries have an empty owner; user-scoped manual rates carry a user id.
type RateCacheEntry struct {
	BaseCurrency   string     `db:"base_currency" json:"baseCurrency"`
	TargetCurrency string     `db:"target_currency" json:"targetCurrency"`
	UserID         string     `db:"user_id" json:"userId,omitempty"`
	Rate           float64    `db:"rate" json:"rate"`
	Source         RateSource `db:"source" json:"source"`
	LastUpdated    time.Time  `db:"last_updated" json:"lastUpdated"`
}
