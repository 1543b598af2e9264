package dispatch

import (
	"github.com/openbuilders/campaign-api/internal/billing"
	"github.com/openbuilders/campaign-api/internal/types"
)

// Strategy is everything that differs between channels. Pricing, sender
// checks, persistence and the debit are shared by the Orchestrator.
type Strategy interface {
	Channel() types.Channel
	// TariffChannel is the channel whose tariff prices the dispatch.
	TariffChannel() types.Channel
	Segments(text string) int64
	// FallbackSender returns the name of the SMS sender to use when the
	// message can't be delivered on the channel itself.
	FallbackSender(sub types.Submission) (string, bool)
	BuildContent(sub types.Submission, fallbackSenderID *int64) types.Content
	// Kind returns the type and period stored with the dispatch.
	Kind() (string, string)
}

type SMS struct{}

func (SMS) Channel() types.Channel       { return types.ChannelSMS }
func (SMS) TariffChannel() types.Channel { return types.ChannelSMS }

func (SMS) Segments(text string) int64 {
	return billing.Segments(types.ChannelSMS, text)
}

func (SMS) FallbackSender(types.Submission) (string, bool) {
	return "", false
}

func (SMS) BuildContent(sub types.Submission, _ *int64) types.Content {
	return types.Content{
		Message:         sub.Message,
		Transliteration: sub.Transliteration,
	}
}

func (SMS) Kind() (string, string) {
	return types.DispatchTypeUsual, types.DispatchPeriodSingle
}

type Viber struct{}

func (Viber) Channel() types.Channel       { return types.ChannelViber }
func (Viber) TariffChannel() types.Channel { return types.ChannelViber }

// Segments prices only the text part. Image and button are free.
func (Viber) Segments(text string) int64 {
	return billing.Segments(types.ChannelViber, text)
}

func (Viber) FallbackSender(sub types.Submission) (string, bool) {
	return sub.SMSSender, sub.SMSSender != ""
}

func (Viber) BuildContent(sub types.Submission, fallbackSenderID *int64) types.Content {
	content := types.Content{
		Message:     sub.Message,
		SMSSenderID: fallbackSenderID,
		SMSMessage:  sub.SMSMessage,
	}

	if sub.ImageURL != "" {
		image := sub.ImageURL
		content.ImageLink = &image
	}

	if sub.ButtonName != "" {
		content.Button = &types.Button{Name: sub.ButtonName, URL: sub.ButtonURL}
	}

	return content
}

// Kind is empty: Viber dispatches have no schedule type.
func (Viber) Kind() (string, string) {
	return "", ""
}
