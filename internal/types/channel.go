package types

import "fmt"

// Channel identifies a delivery channel. The numeric value is the type id
// stored in senders, tariffs, dispatches and details.
type Channel int

const (
	ChannelSMS   Channel = 1
	ChannelViber Channel = 2
)

func (c Channel) String() string {
	switch c {
	case ChannelSMS:
		return "sms"
	case ChannelViber:
		return "viber"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

func (c Channel) Valid() bool {
	return c == ChannelSMS || c == ChannelViber
}

func ParseChannel(s string) (Channel, error) {
	switch s {
	case "sms", "SMS":
		return ChannelSMS, nil
	case "viber", "VIBER":
		return ChannelViber, nil
	}

	return 0, fmt.Errorf("unknown channel %q", s)
}
