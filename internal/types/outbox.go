package types

import (
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxPending   OutboxStatus = "pending"
	OutboxPublished OutboxStatus = "published"
)

// OutboxEvent announces a new dispatch to the send worker.
type OutboxEvent struct {
	ID         uuid.UUID
	DispatchID int64
	Channel    Channel
	Status     OutboxStatus
	CreatedAt  time.Time
}
