package billing

import (
	"unicode"
	"unicode/utf8"

	"github.com/openbuilders/campaign-api/internal/types"
)

const (
	SMSSegmentSize   = 160
	SMSCyrillicSize  = 70
	ViberSegmentSize = 1000
)

// Segments returns the number of billable segments of text on the channel.
// Length is measured in characters, not bytes. An empty text has no segments.
func Segments(channel types.Channel, text string) int64 {
	switch channel {
	case types.ChannelSMS:
		return smsSegments(text)
	case types.ChannelViber:
		return ceilDiv(int64(utf8.RuneCountInString(text)), ViberSegmentSize)
	}

	return 0
}

// smsSegments uses the UCS-2 segment size as soon as a single Cyrillic letter
// is present.
func smsSegments(text string) int64 {
	size := int64(SMSSegmentSize)
	if hasCyrillic(text) {
		size = SMSCyrillicSize
	}

	return ceilDiv(int64(utf8.RuneCountInString(text)), size)
}

func hasCyrillic(text string) bool {
	for _, r := range text {
		if unicode.Is(unicode.Cyrillic, r) && unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func ceilDiv(n, size int64) int64 {
	if n <= 0 {
		return 0
	}

	return (n + size - 1) / size
}
