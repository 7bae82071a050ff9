// Package balance computes the account balance adjustments implied by a
// transaction. The repository applies the resulting deltas inside the same
// database transaction as the record write.
package balance

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cashcraft/server/internal/models"
)

var (
	// ErrNonPositiveAmount is returned for zero or negative amounts
	ErrNonPositiveAmount = errors.New("transaction amount must be positive")
	// ErrMissingTransferTarget is returned for a transfer with no destination
	ErrMissingTransferTarget = errors.New("transfer requires a destination account")
	// ErrSameTransferAccounts is returned when both transfer legs name one account
	ErrSameTransferAccounts = errors.New("cannot transfer to the same account")
)

// Delta is a signed balance adjustment for one account
type Delta struct {
	AccountID string
	Amount    decimal.Decimal
}

// Effect returns the balance deltas a transaction applies when created.
// Income credits the account, expense debits it, a transfer debits the
// source and credits the destination by the same amount so the two legs
// always sum to zero.
func Effect(trx *models.Transaction) ([]Delta, error) {
	if !trx.Amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}

	switch trx.Type {
	case models.TransactionIncome:
		return []Delta{{AccountID: trx.AccountID, Amount: trx.Amount}}, nil
	case models.TransactionExpense:
		return []Delta{{AccountID: trx.AccountID, Amount: trx.Amount.Neg()}}, nil
	case models.TransactionTransfer:
		if trx.ToAccountID == nil || *trx.ToAccountID == "" {
			return nil, ErrMissingTransferTarget
		}
		if *trx.ToAccountID == trx.AccountID {
			return nil, ErrSameTransferAccounts
		}
		return []Delta{
			{AccountID: trx.AccountID, Amount: trx.Amount.Neg()},
			{AccountID: *trx.ToAccountID, Amount: trx.Amount},
		}, nil
	default:
		return nil, fmt.Errorf("unknown transaction type %q", trx.Type)
	}
}

// Invert negates every delta. Applying Invert(Effect(trx)) after Effect(trx)
// restores the prior balances exactly; deletion and the reversal half of an
// update both use it.
func Invert(deltas []Delta) []Delta {
	inverted := make([]Delta, len(deltas))
	for i, d := range deltas {
		inverted[i] = Delta{AccountID: d.AccountID, Amount: d.Amount.Neg()}
	}
	return inverted
}
