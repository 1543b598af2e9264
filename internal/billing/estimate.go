package billing

import (
	"context"

	"github.com/openbuilders/campaign-api/internal/types"

	"github.com/shopspring/decimal"
)

type PriceResolver interface {
	Resolve(ctx context.Context, accountID int64, channel types.Channel) (decimal.Decimal, error)
}

// Estimator prices submissions. It never mutates anything and does not decide
// whether the account can afford the result.
type Estimator struct {
	prices PriceResolver
}

func NewEstimator(prices PriceResolver) *Estimator {
	return &Estimator{prices: prices}
}

// EstimateSegments prices content of the given segment count sent to every
// number of the recipients blob. Segment counts come from Segments.
func (e *Estimator) EstimateSegments(ctx context.Context, account types.Account,
	channel types.Channel, segments int64, recipients string) (types.CostEstimate, error) {

	price, err := e.prices.Resolve(ctx, account.ID, channel)
	if err != nil {
		return types.CostEstimate{}, err
	}

	count := CountRecipients(recipients)
	total := Cost(count, segments, price)

	return types.CostEstimate{
		RecipientCount:   count,
		SegmentCount:     segments,
		UnitPrice:        price,
		TotalCost:        total,
		ProjectedBalance: account.Balance.Sub(total),
	}, nil
}

func Cost(recipients, segments int64, unitPrice decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(recipients).
		Mul(decimal.NewFromInt(segments)).
		Mul(unitPrice)
}
