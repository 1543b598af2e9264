package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Submission is a validated dispatch request of an authenticated account.
type Submission struct {
	Channel         Channel
	Name            string
	Recipients      string
	Sender          string
	Message         string
	Transliteration bool
	StartDate       *time.Time
	ValidityMinutes *int

	// Viber only.
	ImageURL   string
	ButtonName string
	ButtonURL  string
	SMSSender  string
	SMSMessage string
}

// CostEstimate is the price of a submission at the moment it was priced.
type CostEstimate struct {
	RecipientCount   int64
	SegmentCount     int64
	UnitPrice        decimal.Decimal
	TotalCost        decimal.Decimal
	ProjectedBalance decimal.Decimal
}

// Sufficient reports whether the account may afford the dispatch. A projected
// balance of exactly zero is not enough.
func (e CostEstimate) Sufficient() bool {
	return e.ProjectedBalance.IsPositive()
}

// Outcome is the result of a completed submission.
type Outcome struct {
	DispatchID int64
	Estimate   CostEstimate
	NewBalance decimal.Decimal
}
