package billing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openbuilders/campaign-api/internal/types"

	"github.com/shopspring/decimal"
)

const debitDescriptionPrefix = "Снятие денег за рассылку "

// LedgerStore applies a debit in one transaction: it locks the account,
// refuses to take the balance below zero with repository.ErrInsufficientFunds,
// writes the new balance and appends the payment history entry.
type LedgerStore interface {
	Debit(ctx context.Context, debit types.Debit) (decimal.Decimal, error)
}

type Ledger struct {
	store LedgerStore
	log   *slog.Logger
}

func NewLedger(store LedgerStore) *Ledger {
	return &Ledger{
		store: store,
		log:   slog.With("component", "ledger"),
	}
}

// Debit charges amount to the account and returns the balance after it.
func (l *Ledger) Debit(ctx context.Context, accountID int64,
	amount decimal.Decimal, description string) (decimal.Decimal, error) {

	debit, err := NewDebit(accountID, amount, description)
	if err != nil {
		return decimal.Zero, err
	}

	balance, err := l.store.Debit(ctx, debit)
	if err != nil {
		l.log.Error("debit failed",
			"account", accountID,
			"amount", amount.String(),
			"error", err,
		)
		return decimal.Zero, err
	}

	l.log.Debug("debited",
		"account", accountID,
		"amount", amount.String(),
		"balance", balance.String(),
	)

	return balance, nil
}

// NewDebit checks the debit preconditions.
func NewDebit(accountID int64, amount decimal.Decimal, description string) (types.Debit, error) {
	if amount.IsNegative() {
		return types.Debit{}, fmt.Errorf("negative debit amount %s", amount)
	}

	return types.Debit{
		AccountID:   accountID,
		Amount:      amount,
		Description: description,
	}, nil
}

// DebitDescription is the payment history text of a dispatch charge.
func DebitDescription(dispatchName string) string {
	return debitDescriptionPrefix + dispatchName
}
