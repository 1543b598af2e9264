package billing

import (
	"strings"
	"testing"
)

func TestCountRecipients(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
	}{
		{"1,2,3", 3},
		{"1\n2\r\n3,,", 3},
		{"", 0},
		{"abc", 0},
		{"+38 (050) 111-22-33", 1},
		{" 380501112233 ,\t380501112244 ", 2},
		{",,,\n\n", 0},
	}

	for _, tt := range tests {
		if got := CountRecipients(tt.raw); got != tt.want {
			t.Errorf("CountRecipients(%q) = %d, expected %d", tt.raw, got, tt.want)
		}
	}
}

func TestCountRecipientsLargeBlob(t *testing.T) {
	raw := strings.Repeat("380501112233\n", 50000)

	if got := CountRecipients(raw); got != 50000 {
		t.Fatalf("got %d recipients, expected 50000", got)
	}
}
