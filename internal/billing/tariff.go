package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openbuilders/campaign-api/internal/repository"
	"github.com/openbuilders/campaign-api/internal/types"

	"github.com/shopspring/decimal"
)

type TariffStore interface {
	AccountTariff(ctx context.Context, accountID int64, channel types.Channel) (types.Tariff, error)
	// AttachTariff links the tariff to the account unless the account already
	// has one for the channel. It must be safe to call concurrently.
	AttachTariff(ctx context.Context, accountID int64, channel types.Channel, tariffID int64) error
}

type TariffResolver struct {
	store    TariffStore
	defaults map[types.Channel]int64
	log      *slog.Logger
}

// NewTariffResolver creates a resolver that provisions defaults[channel] for
// accounts without a tariff on that channel.
func NewTariffResolver(store TariffStore, defaults map[types.Channel]int64) *TariffResolver {
	return &TariffResolver{
		store:    store,
		defaults: defaults,
		log:      slog.With("component", "tariffs"),
	}
}

// Resolve returns the unit price the account pays on the channel.
func (r *TariffResolver) Resolve(ctx context.Context, accountID int64,
	channel types.Channel) (decimal.Decimal, error) {

	tariff, err := r.store.AccountTariff(ctx, accountID, channel)
	if err == nil {
		return tariff.UnitPrice, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return decimal.Zero, fmt.Errorf("get tariff: %w", err)
	}

	tariffID, ok := r.defaults[channel]
	if !ok {
		return decimal.Zero, fmt.Errorf("no default tariff for %s", channel)
	}

	r.log.Info("Attaching default tariff",
		"account", accountID,
		"channel", channel.String(),
		"tariff", tariffID,
	)

	err = r.store.AttachTariff(ctx, accountID, channel, tariffID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("attach default tariff: %w", err)
	}

	tariff, err = r.store.AccountTariff(ctx, accountID, channel)
	if err != nil {
		return decimal.Zero, fmt.Errorf("get attached tariff: %w", err)
	}

	return tariff.UnitPrice, nil
}
