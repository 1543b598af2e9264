package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/openbuilders/campaign-api/internal/errors"
	"github.com/openbuilders/campaign-api/internal/repository/memory"
	"github.com/openbuilders/campaign-api/internal/types"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
)

const secret = "test-secret"

func newAuthenticator() *Authenticator {
	store := memory.New()
	store.AddAccount(types.Account{ID: 7, Balance: decimal.NewFromInt(100), CurrencyID: 1})
	return NewAuthenticator(secret, store)
}

func TestAuthenticate(t *testing.T) {
	token, err := IssueToken(secret, 7, time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	r := httptest.NewRequest("POST", "/api/v2/sms/dispatches", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	account, err := newAuthenticator().Authenticate(r)
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}

	if account.ID != 7 || !account.Balance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected account %+v", account)
	}
}

func TestAuthenticateFailures(t *testing.T) {
	valid, _ := IssueToken(secret, 7, time.Hour)
	unknown, _ := IssueToken(secret, 8, time.Hour)
	expired, _ := IssueToken(secret, 7, -time.Minute)
	foreign, _ := IssueToken("other-secret", 7, time.Hour)
	noSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{}).
		SignedString([]byte(secret))

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not bearer", "Basic " + valid},
		{"empty bearer", "Bearer "},
		{"garbage", "Bearer not-a-token"},
		{"unknown account", "Bearer " + unknown},
		{"expired", "Bearer " + expired},
		{"wrong secret", "Bearer " + foreign},
		{"no subject", "Bearer " + noSubject},
	}

	a := newAuthenticator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/v2/sms/stats", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}

			_, err := a.Authenticate(r)
			if kind := apperrors.KindOf(err); kind != apperrors.KindUnauthenticated {
				t.Fatalf("expected unauthenticated, got %s (%v)", kind, err)
			}
		})
	}
}
