package types

import "github.com/shopspring/decimal"

// Account is the authenticated tenant. Only Balance is mutated by the
// submission flow.
type Account struct {
	ID         int64           `db:"id"`
	Balance    decimal.Decimal `db:"balance"`
	CurrencyID int64           `db:"currency_id"`
}

// Sender is a registered sender name of an account for one channel.
type Sender struct {
	ID        int64   `db:"id"`
	AccountID int64   `db:"account_id"`
	Channel   Channel `db:"channel"`
	Name      string  `db:"name"`
	Available bool    `db:"available"`
	Active    bool    `db:"status"`
}

// Eligible reports whether the sender may be used for new dispatches.
func (s Sender) Eligible() bool {
	return s.Available && s.Active
}

// Tariff is the unit price an account pays for one segment to one recipient.
type Tariff struct {
	ID        int64           `db:"id"`
	AccountID int64           `db:"account_id"`
	Channel   Channel         `db:"channel"`
	UnitPrice decimal.Decimal `db:"price"`
}

// PaymentHistoryEntry is an append-only record of a debit.
type PaymentHistoryEntry struct {
	ID          int64           `db:"id"`
	AccountID   int64           `db:"account_id"`
	Credit      decimal.Decimal `db:"credit"`
	CurrencyID  int64           `db:"currency_id"`
	Description string          `db:"description"`
}

// TimeSeparator is one of the allowed validity options of a dispatch.
type TimeSeparator struct {
	ID      int64 `db:"id"`
	Minutes int   `db:"minutes"`
}
