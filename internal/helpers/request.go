package helpers

import (
	"context"
	"crypto/sha256"
	"strings"

	"github.com/google/uuid"
)

type requestIDKey struct{}

// NewRequestID returns a unique id for the audit trail of a request, e.g.
// "sms_4f1c9a0e2b7d".
func NewRequestID(prefix string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + id[:13]
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID or an empty string.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// TinyHash is a short stable fingerprint of input, used to log tokens and
// recipient blobs without writing them out.
func TinyHash(input string) string {
	hash := sha256.Sum256([]byte(input))

	// first 4 bytes as an integer, base62 encoded
	hashInt := int(hash[0])<<24 | int(hash[1])<<16 | int(hash[2])<<8 | int(hash[3])

	return base62Encode(hashInt)
}

func base62Encode(num int) string {
	const charset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	if num == 0 {
		return "0"
	}

	var result []byte
	for num > 0 {
		result = append([]byte{charset[num%62]}, result...)
		num /= 62
	}
	return string(result)
}
