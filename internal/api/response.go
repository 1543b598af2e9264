package api

import "github.com/openbuilders/campaign-api/internal/types"

const (
	statusSuccess = "success"
	statusError   = "error"
)

// SuccessResponse is the envelope of the probe endpoints.
type SuccessResponse struct {
	Ok   bool        `json:"ok"`
	Data interface{} `json:"data"`
}

type ErrorResponse struct {
	Ok        bool   `json:"ok"`
	ErrorCode string `json:"errorCode"`
}

type DispatchCreatedResponse struct {
	Status  string       `json:"status"`
	Code    APIErrorCode `json:"code"`
	ID      int64        `json:"id"`
	Message string       `json:"message"`
}

type DispatchErrorResponse struct {
	Status  string              `json:"status"`
	Code    APIErrorCode        `json:"code"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

type StatsResponse struct {
	QueryStatus string             `json:"query_status"`
	Name        string             `json:"name"`
	StatusID    types.SendStatus   `json:"status_id"`
	StatusName  string             `json:"status_name"`
	Details     []types.StatDetail `json:"details"`
}

type StatsErrorResponse struct {
	QueryStatus string       `json:"query_status"`
	Code        APIErrorCode `json:"code"`
	Message     string       `json:"message"`
}
