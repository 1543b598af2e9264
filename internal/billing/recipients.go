package billing

import "strings"

// CountRecipients counts the numbers in a raw recipients blob. Line breaks act
// as separators and everything except ASCII digits and commas is dropped, so
// malformed input yields a lower count instead of an error.
func CountRecipients(raw string) int64 {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r == '\r' || r == '\n':
			return ','
		case r == ',' || (r >= '0' && r <= '9'):
			return r
		}
		return -1
	}, raw)

	var count int64
	for _, field := range strings.Split(clean, ",") {
		if field != "" {
			count++
		}
	}

	return count
}
