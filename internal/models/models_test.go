package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestIsPremiumActive(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)
	past := time.Now().Add(-24 * time.Hour)

	tests := []struct {
		name      string
		isPremium bool
		expiresAt *time.Time
		want      bool
	}{
		{"not premium", false, nil, false},
		{"not premium with expiry set", false, &future, false},
		{"premium without expiry", true, nil, true},
		{"premium with future expiry", true, &future, true},
		{"premium expired", true, &past, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := User{IsPremium: tt.isPremium, PremiumExpiresAt: tt.expiresAt}
			assert.Equal(t, tt.want, u.IsPremiumActive())
		})
	}
}

func TestMonthlyPayment(t *testing.T) {
	rate := 12.0
	term := 12
	annuity := CreditPaymentAnnuity
	differentiated := CreditPaymentDifferentiated

	creditAccount := func(principal int64, paymentType *string) Account {
		return Account{
			Type:                AccountCredit,
			CreditInitialAmount: decimal.NewNullDecimal(decimal.NewFromInt(principal)),
			CreditRate:          &rate,
			CreditTerm:          &term,
			CreditPaymentType:   paymentType,
		}
	}

	t.Run("non-credit account", func(t *testing.T) {
		a := Account{Type: AccountCash}
		assert.Nil(t, a.MonthlyPayment())
	})

	t.Run("credit with incomplete fields", func(t *testing.T) {
		a := Account{Type: AccountCredit, CreditRate: &rate}
		assert.Nil(t, a.MonthlyPayment())
	})

	t.Run("annuity schedule", func(t *testing.T) {
		a := creditAccount(100000, &annuity)
		payment := a.MonthlyPayment()
		if assert.NotNil(t, payment) {
			// 100000 over 12 months at 12% per year
			assert.InDelta(t, 8884.88, *payment, 0.01)
		}
	})

	t.Run("differentiated schedule first payment", func(t *testing.T) {
		a := creditAccount(120000, &differentiated)
		payment := a.MonthlyPayment()
		if assert.NotNil(t, payment) {
			// 120000/12 principal share plus 120000 * 1% monthly interest
			assert.InDelta(t, 11200, *payment, 0.001)
		}
	})

	t.Run("annuity with zero rate", func(t *testing.T) {
		zero := 0.0
		a := creditAccount(12000, &annuity)
		a.CreditRate = &zero
		payment := a.MonthlyPayment()
		if assert.NotNil(t, payment) {
			assert.InDelta(t, 1000, *payment, 0.001)
		}
	})
}
