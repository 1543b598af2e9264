package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// SendStatus is the state of a turn as seen by the send worker.
type SendStatus int

const (
	SendStatusPaused SendStatus = 0
	SendStatusInWork SendStatus = 1
	SendStatusDone   SendStatus = 2
	SendStatusWait   SendStatus = 3
)

func (s SendStatus) Name() string {
	switch s {
	case SendStatusPaused:
		return "Paused"
	case SendStatusInWork:
		return "In work"
	case SendStatusDone:
		return "Done"
	case SendStatusWait:
		return "Wait"
	}

	return "Unknown"
}

const (
	DispatchTypeUsual    = "usual"
	DispatchPeriodSingle = "single"
)

// Button is the call-to-action of a Viber message.
type Button struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Content is the channel specific payload of a dispatch. SMS dispatches only
// use Message and Transliteration.
type Content struct {
	Message         string
	Transliteration bool
	ImageLink       *string
	Button          *Button
	SMSSenderID     *int64
	SMSMessage      string
}

// Dispatch is one campaign. It is created once per successful submission.
type Dispatch struct {
	ID             int64
	AccountID      int64
	Channel        Channel
	Name           string
	SenderID       int64
	Content        Content
	ControlNumbers string
	RecipientsIDs  string
	StopListIDs    string
	LiveTimeID     int64
	Paused         bool
	Type           string
	Period         string
	StartDate      time.Time
	LocalTime      bool
	SmoothTime     *int
	CreatedAt      time.Time
}

// Debit is a pending charge against an account balance.
type Debit struct {
	AccountID   int64
	Amount      decimal.Decimal
	Description string
}
