package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	errMissingToken = errors.New("missing bearer token")
	errNoSecret     = errors.New("token verification is not configured")
)

type ownerKey struct{}

// Authenticator verifies HS256 bearer tokens issued by the auth provider and
// extracts the caller's owner id from the "sub" claim.
type Authenticator struct {
	secret   []byte
	audience string
}

// NewAuthenticator creates an Authenticator. audience may be empty.
func NewAuthenticator(secret, audience string) *Authenticator {
	return &Authenticator{secret: []byte(secret), audience: audience}
}

// OwnerID validates tokenString and returns its subject.
// Every token is rejected while the secret is empty.
func (a *Authenticator) OwnerID(tokenString string) (string, error) {
	if len(a.secret) == 0 {
		return "", errNoSecret
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name})}
	if a.audience != "" {
		opts = append(opts, jwt.WithAudience(a.audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", fmt.Errorf("invalid token: missing subject")
	}
	return claims.Subject, nil
}

// Require rejects requests without a valid bearer token.
func (a *Authenticator) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			writeError(w, http.StatusUnauthorized, errMissingToken)
			return
		}

		ownerID, err := a.OwnerID(tokenString)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err)
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), ownerKey{}, ownerID)))
	}
}

// OwnerFromContext returns the authenticated owner id.
func OwnerFromContext(ctx context.Context) (string, bool) {
	ownerID, ok := ctx.Value(ownerKey{}).(string)
	return ownerID, ok
}
