package validation

import (
	"context"
	"strings"
	"testing"

	apperrors "github.com/openbuilders/campaign-api/internal/errors"
	"github.com/openbuilders/campaign-api/internal/types"
)

type staticMinutes []int

func (m staticMinutes) Minutes(context.Context) ([]int, error) {
	return m, nil
}

func newValidator() *Validator {
	return New(5, staticMinutes{60, 720, 1440})
}

func details(t *testing.T, err error) map[string][]string {
	t.Helper()

	se, ok := err.(apperrors.ServiceError)
	if !ok || se.Kind != apperrors.KindInvalidRequest {
		t.Fatalf("expected invalid request error, got %v", err)
	}
	return se.Details
}

func validSMS() SMSRequest {
	return SMSRequest{
		Name:       "spring sale",
		Recipients: "380501112233\n380501112244",
		Sender:     "Shop",
		Message:    "Привет",
	}
}

func TestSMSRequest(t *testing.T) {
	req := validSMS()
	req.Transliteration = "1"
	req.Date = "2027-03-01 09:30:00"
	req.Validity = "720"

	sub, err := newValidator().SMS(context.Background(), req)
	if err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	if sub.Channel != types.ChannelSMS || !sub.Transliteration {
		t.Errorf("unexpected submission %+v", sub)
	}
	if sub.StartDate == nil || sub.StartDate.Hour() != 9 || sub.StartDate.Minute() != 30 {
		t.Errorf("unexpected start date %v", sub.StartDate)
	}
	if sub.ValidityMinutes == nil || *sub.ValidityMinutes != 720 {
		t.Errorf("unexpected validity %v", sub.ValidityMinutes)
	}
}

func TestSMSRequestDefaults(t *testing.T) {
	sub, err := newValidator().SMS(context.Background(), validSMS())
	if err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	if sub.StartDate != nil || sub.ValidityMinutes != nil || sub.Transliteration {
		t.Fatalf("optional fields were filled: %+v", sub)
	}
}

func TestSMSRequestErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*SMSRequest)
		field  string
		want   string
	}{
		{"missing name", func(r *SMSRequest) { r.Name = "" }, "name", "The name field is required."},
		{"short name", func(r *SMSRequest) { r.Name = "abc" }, "name", "The name must be at least 4 characters."},
		{"long name", func(r *SMSRequest) { r.Name = strings.Repeat("я", 61) }, "name", "The name may not be greater than 60 characters."},
		{"missing sender", func(r *SMSRequest) { r.Sender = "" }, "sender", "The sender field is required."},
		{"missing message", func(r *SMSRequest) { r.Message = "" }, "message", "The message field is required."},
		{"long message", func(r *SMSRequest) { r.Message = strings.Repeat("a", 2001) }, "message", "The message may not be greater than 2000 characters."},
		{"too many recipients", func(r *SMSRequest) { r.Recipients = "1,2,3,4,5,6" }, "recipients", "The recipients list is too long."},
		{"bad transliteration", func(r *SMSRequest) { r.Transliteration = "maybe" }, "transliteration", "The transliteration field must be true or false."},
		{"bad date", func(r *SMSRequest) { r.Date = "tomorrow" }, "date", "The date is not a valid date."},
		{"text validity", func(r *SMSRequest) { r.Validity = "day" }, "validity", "The validity must be a number."},
		{"unknown validity", func(r *SMSRequest) { r.Validity = "61" }, "validity", "Validity value must be one of the following: 60,720,1440"},
	}

	v := newValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validSMS()
			tt.modify(&req)

			_, err := v.SMS(context.Background(), req)
			got := details(t, err)[tt.field]
			if len(got) != 1 || got[0] != tt.want {
				t.Fatalf("%s errors are %q, expected %q", tt.field, got, tt.want)
			}
		})
	}
}

func TestViberRequest(t *testing.T) {
	v := newValidator()

	sub, err := v.Viber(context.Background(), ViberRequest{
		Name:       "viber promo",
		Recipients: "380501112233",
		Sender:     "ShopViber",
		ImageURL:   "https://example.com/a.png",
		ButtonName: "Buy",
		ButtonURL:  "https://example.com",
		SMSSender:  "Shop",
		SMSMessage: "fallback",
	})
	if err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	if sub.Channel != types.ChannelViber || sub.Message != "" || sub.ButtonName != "Buy" || sub.SMSSender != "Shop" {
		t.Fatalf("unexpected submission %+v", sub)
	}
}

func TestViberRequestErrors(t *testing.T) {
	base := func() ViberRequest {
		return ViberRequest{
			Name:       "viber promo",
			Recipients: "380501112233",
			Sender:     "ShopViber",
			Message:    "hello",
		}
	}

	tests := []struct {
		name   string
		modify func(*ViberRequest)
		field  string
	}{
		{"no content", func(r *ViberRequest) { r.Message = "" }, "message"},
		{"long message", func(r *ViberRequest) { r.Message = strings.Repeat("a", 1001) }, "message"},
		{"button without url", func(r *ViberRequest) { r.ButtonName = "Buy" }, "button_url"},
		{"url without button", func(r *ViberRequest) { r.ButtonURL = "https://example.com" }, "button_name"},
		{"long button", func(r *ViberRequest) { r.ButtonName = strings.Repeat("b", 20); r.ButtonURL = "https://example.com" }, "button_name"},
		{"fallback sender alone", func(r *ViberRequest) { r.SMSSender = "Shop" }, "sms_message"},
		{"fallback message alone", func(r *ViberRequest) { r.SMSMessage = "fallback" }, "sms_sender"},
		{"long fallback message", func(r *ViberRequest) { r.SMSSender = "Shop"; r.SMSMessage = strings.Repeat("a", 1001) }, "sms_message"},
	}

	v := newValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base()
			tt.modify(&req)

			_, err := v.Viber(context.Background(), req)
			if len(details(t, err)[tt.field]) == 0 {
				t.Fatalf("expected an error for %s, got %v", tt.field, details(t, err))
			}
		})
	}
}
