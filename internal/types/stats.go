package types

import "github.com/shopspring/decimal"

// StatDetail is the delivery state of one recipient of a dispatch.
type StatDetail struct {
	Recipient  string          `json:"recipient"`
	Price      decimal.Decimal `json:"price"`
	Sender     *string         `json:"sender"`
	StatusID   int             `json:"status_id"`
	StatusName *string         `json:"status_name"`
}

// DispatchStats is the aggregated view returned by the statistics endpoint.
type DispatchStats struct {
	Name       string       `json:"name"`
	StatusID   SendStatus   `json:"status_id"`
	StatusName string       `json:"status_name"`
	Details    []StatDetail `json:"details"`
}

// DispatchState is what the statistics reader needs to know about a dispatch.
type DispatchState struct {
	ID         int64
	Name       string
	Paused     bool
	SendStatus SendStatus
}
