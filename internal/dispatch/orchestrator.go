// Package dispatch turns a validated submission into a paid dispatch.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/openbuilders/campaign-api/internal/billing"
	apperrors "github.com/openbuilders/campaign-api/internal/errors"
	"github.com/openbuilders/campaign-api/internal/helpers"
	"github.com/openbuilders/campaign-api/internal/metrics"
	"github.com/openbuilders/campaign-api/internal/repository"
	"github.com/openbuilders/campaign-api/internal/types"

	"github.com/shopspring/decimal"
)

type Store interface {
	FindSender(ctx context.Context, accountID int64, channel types.Channel, name string) (types.Sender, error)
	CreateDispatch(ctx context.Context, d *types.Dispatch) (int64, error)
	CreateDispatchAndDebit(ctx context.Context, d *types.Dispatch, debit types.Debit) (int64, decimal.Decimal, error)
}

type Estimator interface {
	EstimateSegments(ctx context.Context, account types.Account, channel types.Channel,
		segments int64, recipients string) (types.CostEstimate, error)
}

type Ledger interface {
	Debit(ctx context.Context, accountID int64, amount decimal.Decimal, description string) (decimal.Decimal, error)
}

type LiveTimes interface {
	LiveTimeID(ctx context.Context, minutes *int) (int64, error)
}

type Config struct {
	// AtomicDebit creates the dispatch and debits the account in one
	// transaction. Otherwise the dispatch is committed first and a failed
	// debit leaves it in place.
	AtomicDebit bool
}

type Orchestrator struct {
	config     *Config
	strategies map[types.Channel]Strategy
	store      Store
	estimator  Estimator
	ledger     Ledger
	liveTimes  LiveTimes
	now        func() time.Time
	log        *slog.Logger
}

func NewOrchestrator(config *Config, store Store, estimator Estimator, ledger Ledger,
	liveTimes LiveTimes, strategies ...Strategy) *Orchestrator {

	o := &Orchestrator{
		config:     config,
		strategies: make(map[types.Channel]Strategy, len(strategies)),
		store:      store,
		estimator:  estimator,
		ledger:     ledger,
		liveTimes:  liveTimes,
		now:        time.Now,
		log:        slog.With("component", "dispatch"),
	}

	for _, s := range strategies {
		o.strategies[s.Channel()] = s
	}

	return o
}

// Submit prices the submission, checks the senders, creates the dispatch and
// debits the account. Every failure is a ServiceError.
func (o *Orchestrator) Submit(ctx context.Context, account types.Account,
	sub types.Submission) (types.Outcome, error) {

	log := o.log.With(
		"uuid", helpers.RequestID(ctx),
		"account", account.ID,
		"channel", sub.Channel.String(),
	)

	outcome, err := o.submit(ctx, log, account, sub)
	if err != nil {
		kind := apperrors.KindOf(err)
		metrics.Submissions.WithLabelValues(sub.Channel.String(), kind.String()).Inc()
		log.Error("submission failed", "kind", kind.String(), "error", err)
		return types.Outcome{}, err
	}

	metrics.Submissions.WithLabelValues(sub.Channel.String(), "created").Inc()
	metrics.Debited.WithLabelValues(sub.Channel.String()).
		Add(outcome.Estimate.TotalCost.InexactFloat64())

	log.Info("dispatch created",
		"dispatch", outcome.DispatchID,
		"recipients", outcome.Estimate.RecipientCount,
		"segments", outcome.Estimate.SegmentCount,
		"cost", outcome.Estimate.TotalCost.String(),
		"balance", outcome.NewBalance.String(),
	)

	return outcome, nil
}

func (o *Orchestrator) submit(ctx context.Context, log *slog.Logger, account types.Account,
	sub types.Submission) (types.Outcome, error) {

	strategy, ok := o.strategies[sub.Channel]
	if !ok {
		return types.Outcome{}, apperrors.Wrap(apperrors.KindUndefined,
			fmt.Errorf("unsupported channel %s", sub.Channel))
	}

	estimate, err := o.estimator.EstimateSegments(ctx, account, strategy.TariffChannel(),
		strategy.Segments(sub.Message), sub.Recipients)
	if err != nil {
		return types.Outcome{}, apperrors.Wrap(apperrors.KindUndefined, fmt.Errorf("estimate: %w", err))
	}

	log.Debug("priced",
		"recipients", estimate.RecipientCount,
		"segments", estimate.SegmentCount,
		"unit_price", estimate.UnitPrice.String(),
		"projected_balance", estimate.ProjectedBalance.String(),
	)

	if !estimate.Sufficient() {
		return types.Outcome{}, apperrors.New(apperrors.KindInsufficientFunds, "not enough money")
	}

	if estimate.TotalCost.IsZero() {
		metrics.ZeroCostDispatches.WithLabelValues(sub.Channel.String()).Inc()
		log.Warn("dispatch has no billable segments", "recipients", estimate.RecipientCount)
	}

	sender, err := o.resolveSender(ctx, account.ID, strategy.Channel(), sub.Sender,
		apperrors.KindInvalidSender)
	if err != nil {
		return types.Outcome{}, err
	}

	var fallbackID *int64
	if name, ok := strategy.FallbackSender(sub); ok {
		fallback, err := o.resolveSender(ctx, account.ID, types.ChannelSMS, name,
			apperrors.KindInvalidFallbackSender)
		if err != nil {
			return types.Outcome{}, err
		}
		fallbackID = &fallback.ID
	}

	liveTime, err := o.liveTimes.LiveTimeID(ctx, sub.ValidityMinutes)
	if err != nil {
		return types.Outcome{}, apperrors.Wrap(apperrors.KindUndefined, fmt.Errorf("live time: %w", err))
	}

	d := o.buildDispatch(strategy, account, sub, sender.ID, fallbackID, liveTime)

	debit, err := billing.NewDebit(account.ID, estimate.TotalCost, billing.DebitDescription(sub.Name))
	if err != nil {
		return types.Outcome{}, apperrors.Wrap(apperrors.KindUndefined, err)
	}

	if debit.Amount.IsZero() {
		return o.createFree(ctx, d, account, estimate)
	}

	if o.config.AtomicDebit {
		return o.createAndDebit(ctx, d, debit, estimate)
	}

	return o.createThenDebit(ctx, log, d, debit, estimate)
}

func (o *Orchestrator) resolveSender(ctx context.Context, accountID int64,
	channel types.Channel, name string, kind apperrors.Kind) (types.Sender, error) {

	sender, err := o.store.FindSender(ctx, accountID, channel, name)
	if errors.Is(err, repository.ErrNotFound) {
		return types.Sender{}, apperrors.New(kind, fmt.Sprintf("sender %q is not registered", name))
	}
	if err != nil {
		return types.Sender{}, apperrors.Wrap(apperrors.KindUndefined, fmt.Errorf("find sender: %w", err))
	}

	if !sender.Eligible() {
		return types.Sender{}, apperrors.New(kind, fmt.Sprintf("sender %q is not available", name))
	}

	return sender, nil
}

func (o *Orchestrator) buildDispatch(strategy Strategy, account types.Account, sub types.Submission,
	senderID int64, fallbackID *int64, liveTime int64) *types.Dispatch {

	start := o.now()
	if sub.StartDate != nil {
		start = *sub.StartDate
	}

	kind, period := strategy.Kind()

	return &types.Dispatch{
		AccountID:      account.ID,
		Channel:        strategy.Channel(),
		Name:           sub.Name,
		SenderID:       senderID,
		Content:        strategy.BuildContent(sub, fallbackID),
		ControlNumbers: sub.Recipients,
		LiveTimeID:     liveTime,
		Type:           kind,
		Period:         period,
		StartDate:      start,
	}
}

// createFree stores a dispatch that costs nothing. The ledger is not touched,
// so no payment history entry is written.
func (o *Orchestrator) createFree(ctx context.Context, d *types.Dispatch, account types.Account,
	estimate types.CostEstimate) (types.Outcome, error) {

	id, err := o.store.CreateDispatch(ctx, d)
	if err != nil {
		return types.Outcome{}, apperrors.Wrap(apperrors.KindUndefined, fmt.Errorf("create dispatch: %w", err))
	}

	return types.Outcome{DispatchID: id, Estimate: estimate, NewBalance: account.Balance}, nil
}

func (o *Orchestrator) createAndDebit(ctx context.Context, d *types.Dispatch, debit types.Debit,
	estimate types.CostEstimate) (types.Outcome, error) {

	id, balance, err := o.store.CreateDispatchAndDebit(ctx, d, debit)
	if errors.Is(err, repository.ErrInsufficientFunds) {
		return types.Outcome{}, apperrors.ServiceError{
			Kind:    apperrors.KindInsufficientFunds,
			Message: "not enough money",
			Err:     err,
		}
	}
	if err != nil {
		return types.Outcome{}, apperrors.Wrap(apperrors.KindUndefined, fmt.Errorf("create paid dispatch: %w", err))
	}

	return types.Outcome{DispatchID: id, Estimate: estimate, NewBalance: balance}, nil
}

// createThenDebit commits the dispatch before charging for it. A failed debit
// is reported as undefined and the dispatch stays in place.
func (o *Orchestrator) createThenDebit(ctx context.Context, log *slog.Logger, d *types.Dispatch,
	debit types.Debit, estimate types.CostEstimate) (types.Outcome, error) {

	id, err := o.store.CreateDispatch(ctx, d)
	if err != nil {
		return types.Outcome{}, apperrors.Wrap(apperrors.KindUndefined, fmt.Errorf("create dispatch: %w", err))
	}

	balance, err := o.ledger.Debit(ctx, debit.AccountID, debit.Amount, debit.Description)
	if err != nil {
		log.Error("dispatch was created but not paid",
			"dispatch", id,
			"amount", debit.Amount.String(),
			"error", err,
		)
		return types.Outcome{}, apperrors.Wrap(apperrors.KindUndefined, fmt.Errorf("debit: %w", err))
	}

	return types.Outcome{DispatchID: id, Estimate: estimate, NewBalance: balance}, nil
}
