package helpers

import (
	"context"
	"strings"
	"testing"
)

func TestNewRequestID(t *testing.T) {
	a := NewRequestID("sms_")
	b := NewRequestID("sms_")

	if !strings.HasPrefix(a, "sms_") || len(a) != len("sms_")+13 {
		t.Fatalf("unexpected request id %q", a)
	}
	if a == b {
		t.Fatalf("request ids are not unique: %q", a)
	}
}

func TestRequestIDContext(t *testing.T) {
	if id := RequestID(context.Background()); id != "" {
		t.Fatalf("expected empty id, got %q", id)
	}

	ctx := WithRequestID(context.Background(), "viber_1")
	if id := RequestID(ctx); id != "viber_1" {
		t.Fatalf("got %q, expected viber_1", id)
	}
}

func TestTinyHash(t *testing.T) {
	if TinyHash("380501112233") != TinyHash("380501112233") {
		t.Fatalf("hash is not stable")
	}
	if TinyHash("a") == TinyHash("b") {
		t.Fatalf("different inputs share a hash")
	}
}
