package billing

import (
	"strings"
	"testing"

	"github.com/openbuilders/campaign-api/internal/types"
)

func TestSegments(t *testing.T) {
	tests := []struct {
		name    string
		channel types.Channel
		text    string
		want    int64
	}{
		{"empty sms", types.ChannelSMS, "", 0},
		{"one latin char", types.ChannelSMS, "a", 1},
		{"latin full segment", types.ChannelSMS, strings.Repeat("a", 160), 1},
		{"latin overflow", types.ChannelSMS, strings.Repeat("a", 161), 2},
		{"cyrillic full segment", types.ChannelSMS, strings.Repeat("я", 70), 1},
		{"cyrillic overflow", types.ChannelSMS, strings.Repeat("я", 71), 2},
		{"single cyrillic letter switches size", types.ChannelSMS, strings.Repeat("a", 100) + "Ё", 2},
		{"ukrainian letter switches size", types.ChannelSMS, "Hi Ї" + strings.Repeat("a", 67), 2},
		{"ukrainian full segment", types.ChannelSMS, strings.Repeat("і", 35) + strings.Repeat("є", 35), 1},
		{"ukrainian overflow", types.ChannelSMS, strings.Repeat("ґ", 71), 2},
		{"belarusian letter", types.ChannelSMS, strings.Repeat("a", 70) + "ў", 2},
		{"serbian letter", types.ChannelSMS, "ђ" + strings.Repeat("a", 70), 2},
		{"numero sign is not a letter", types.ChannelSMS, strings.Repeat("1", 71) + "№", 1},
		{"empty viber", types.ChannelViber, "", 0},
		{"viber full segment", types.ChannelViber, strings.Repeat("я", 1000), 1},
		{"viber overflow", types.ChannelViber, strings.Repeat("a", 1001), 2},
		{"unknown channel", types.Channel(9), "hello", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Segments(tt.channel, tt.text); got != tt.want {
				t.Errorf("Segments(%s, %d runes) = %d, expected %d",
					tt.channel, len([]rune(tt.text)), got, tt.want)
			}
		})
	}
}
