// Package auth turns a bearer token into the account it was issued for.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/openbuilders/campaign-api/internal/errors"
	"github.com/openbuilders/campaign-api/internal/helpers"
	"github.com/openbuilders/campaign-api/internal/repository"
	"github.com/openbuilders/campaign-api/internal/types"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

type AccountStore interface {
	Account(ctx context.Context, id int64) (types.Account, error)
}

type Authenticator struct {
	secret []byte
	store  AccountStore
	log    *slog.Logger
}

func NewAuthenticator(secret string, store AccountStore) *Authenticator {
	return &Authenticator{
		secret: []byte(secret),
		store:  store,
		log:    slog.With("component", "auth"),
	}
}

// Authenticate loads the account named by the subject of the request token.
// Every failure is an Unauthenticated ServiceError.
func (a *Authenticator) Authenticate(r *http.Request) (types.Account, error) {
	token, ok := bearerToken(r)
	if !ok {
		return types.Account{}, apperrors.Wrap(apperrors.KindUnauthenticated, ErrMissingToken)
	}

	accountID, err := a.accountID(token)
	if err != nil {
		a.log.Debug("token rejected", "token", helpers.TinyHash(token), "error", err)
		return types.Account{}, apperrors.Wrap(apperrors.KindUnauthenticated, err)
	}

	account, err := a.store.Account(r.Context(), accountID)
	if errors.Is(err, repository.ErrNotFound) {
		return types.Account{}, apperrors.Wrap(apperrors.KindUnauthenticated,
			fmt.Errorf("account %d: %w", accountID, err))
	}
	if err != nil {
		return types.Account{}, apperrors.Wrap(apperrors.KindUndefined, fmt.Errorf("load account: %w", err))
	}

	return account, nil
}

func (a *Authenticator) accountID(token string) (int64, error) {
	var claims jwt.RegisteredClaims

	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad subject %q", ErrInvalidToken, claims.Subject)
	}

	return id, nil
}

// IssueToken signs a token for the account. A zero ttl issues a token that
// never expires.
func IssueToken(secret string, accountID int64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:  strconv.FormatInt(accountID, 10),
		IssuedAt: jwt.NewNumericDate(now),
	}
	if ttl != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	token = strings.TrimSpace(token)

	return token, ok && token != ""
}
