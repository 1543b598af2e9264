package model

import (
	"encoding/json"
	"time"

	"github.com/openbuilders/campaign-api/internal/types"
)

// Dispatch is the dispatches row. Nullable columns are pointers.
type Dispatch struct {
	AccountID      int64     `db:"account_id"`
	Channel        int       `db:"channel"`
	Name           string    `db:"name"`
	Message        string    `db:"message"`
	SenderID       int64     `db:"sender_id"`
	RecipientsIDs  string    `db:"recipients_ids"`
	ControlNumbers string    `db:"control_numbers"`
	StopListIDs    string    `db:"stop_list_ids"`
	Transliterate  bool      `db:"transliteration"`
	LiveTime       int64     `db:"live_time"`
	Paused         bool      `db:"paused"`
	Type           *string   `db:"type"`
	Period         *string   `db:"period"`
	StartDate      time.Time `db:"start_date"`
	LocalTime      bool      `db:"local_time"`
	SmoothTime     *int      `db:"smooth_time"`
	ImageLink      *string   `db:"image_link"`
	Button         []byte    `db:"button"`
	SMSSenderID    *int64    `db:"sms_sender_id"`
	SMSMessage     *string   `db:"sms_message"`
}

func FromDispatch(d *types.Dispatch) (Dispatch, error) {
	row := Dispatch{
		AccountID:      d.AccountID,
		Channel:        int(d.Channel),
		Name:           d.Name,
		Message:        d.Content.Message,
		SenderID:       d.SenderID,
		RecipientsIDs:  d.RecipientsIDs,
		ControlNumbers: d.ControlNumbers,
		StopListIDs:    d.StopListIDs,
		Transliterate:  d.Content.Transliteration,
		LiveTime:       d.LiveTimeID,
		Paused:         d.Paused,
		Type:           nullable(d.Type),
		Period:         nullable(d.Period),
		StartDate:      d.StartDate,
		LocalTime:      d.LocalTime,
		SmoothTime:     d.SmoothTime,
		ImageLink:      d.Content.ImageLink,
		SMSSenderID:    d.Content.SMSSenderID,
	}

	if d.Channel == types.ChannelViber {
		row.SMSMessage = &d.Content.SMSMessage
	}

	if d.Content.Button != nil {
		button, err := json.Marshal([]string{d.Content.Button.Name, d.Content.Button.URL})
		if err != nil {
			return Dispatch{}, err
		}
		row.Button = button
	}

	return row, nil
}

// Args returns the values in the column order of Columns.
func (d Dispatch) Args() []any {
	return []any{
		d.AccountID, d.Channel, d.Name, d.Message, d.SenderID,
		d.RecipientsIDs, d.ControlNumbers, d.StopListIDs, d.Transliterate,
		d.LiveTime, d.Paused, d.Type, d.Period, d.StartDate, d.LocalTime,
		d.SmoothTime, d.ImageLink, d.Button, d.SMSSenderID, d.SMSMessage,
	}
}

var Columns = []string{
	"account_id", "channel", "name", "message", "sender_id",
	"recipients_ids", "control_numbers", "stop_list_ids", "transliteration",
	"live_time", "paused", "type", "period", "start_date", "local_time",
	"smooth_time", "image_link", "button", "sms_sender_id", "sms_message",
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
