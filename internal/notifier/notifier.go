package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/openbuilders/campaign-api/internal/metrics"
	"github.com/openbuilders/campaign-api/internal/queue"
	"github.com/openbuilders/campaign-api/internal/types"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/google/uuid"
)

const PatternDispatchCreated = "dispatch-created"

type Config struct {
	BatchSize    int
	PollInterval time.Duration
	DBTimeout    time.Duration
	MaxRetries   int
	RetryDelay   time.Duration
}

type DispatchCreatedData struct {
	DispatchID int64  `json:"dispatch_id"`
	Channel    string `json:"channel"`
}

type DispatchCreatedNotification struct {
	Pattern string              `json:"pattern"`
	Data    DispatchCreatedData `json:"data"`
}

type Repository interface {
	ClaimOutbox(ctx context.Context, limit int) ([]types.OutboxEvent, error)
	MarkOutboxPublished(ctx context.Context, ids []uuid.UUID) error
}

type Publisher interface {
	Publish(ctx context.Context, queueName queue.QueueName, message []byte) error
}

// Notifier relays outbox events of new dispatches to the send worker queue.
type Notifier struct {
	config   *Config
	queue    Publisher
	repo     Repository
	executor failsafe.Executor[any]
	log      *slog.Logger
}

func New(config *Config, publisher Publisher, repo Repository) *Notifier {
	retry := retrypolicy.NewBuilder[any]().
		WithBackoff(config.RetryDelay, 10*config.RetryDelay).
		WithMaxRetries(config.MaxRetries).
		Build()

	return &Notifier{
		config:   config,
		queue:    publisher,
		repo:     repo,
		executor: failsafe.With[any](retry),
		log:      slog.With("component", "notifier"),
	}
}

func (n *Notifier) Start(ctx context.Context) error {
	n.log.Info("Starting notifier...")

	pollInterval := time.Duration(0)

	for {
		select {
		case <-ctx.Done():
			n.log.Info("Stopping notifier.")
			return nil

		case <-time.After(pollInterval):
			pollInterval = n.config.PollInterval

			if _, err := n.Relay(ctx); err != nil {
				n.log.Error("relay failed", "error", err)
			}
		}
	}
}

// Relay publishes one batch of pending events and returns how many were
// published. Events after the first failed publish stay pending and are
// retried by a later poll.
func (n *Notifier) Relay(ctx context.Context) (int, error) {
	claimCtx, cancel := context.WithTimeout(ctx, n.config.DBTimeout)
	events, err := n.repo.ClaimOutbox(claimCtx, n.config.BatchSize)
	cancel()
	if err != nil {
		return 0, fmt.Errorf("claim outbox: %w", err)
	}

	published := make([]uuid.UUID, 0, len(events))
	var publishErr error

	for _, event := range events {
		payload, err := json.Marshal(DispatchCreatedNotification{
			Pattern: PatternDispatchCreated,
			Data: DispatchCreatedData{
				DispatchID: event.DispatchID,
				Channel:    event.Channel.String(),
			},
		})
		if err != nil {
			publishErr = fmt.Errorf("marshal event %s: %w", event.ID, err)
			break
		}

		n.log.Debug("Sending notification", "payload", string(payload))

		err = n.executor.WithContext(ctx).Run(func() error {
			return n.queue.Publish(ctx, queue.QueueDispatchCreated, payload)
		})
		if err != nil {
			publishErr = fmt.Errorf("publish event %s: %w", event.ID, err)
			break
		}

		published = append(published, event.ID)
	}

	if len(published) > 0 {
		markCtx, cancel := context.WithTimeout(ctx, n.config.DBTimeout)
		err := n.repo.MarkOutboxPublished(markCtx, published)
		cancel()
		if err != nil {
			// the events are published again after the lease expires
			return 0, fmt.Errorf("mark published: %w", err)
		}

		metrics.OutboxPublished.Add(float64(len(published)))
		n.log.Debug("Published dispatch events", "count", len(published))
	}

	return len(published), publishErr
}
