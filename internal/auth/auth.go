// Package auth issues and verifies the access tokens a voice platform hands
// back after account linking.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoSecret is returned when a Tokens is built without a signing secret.
	ErrNoSecret = errors.New("auth: signing secret is empty")
	// ErrMissingToken means the request carried no access token.
	ErrMissingToken = errors.New("auth: missing access token")
	// ErrInvalidToken wraps every verification failure.
	ErrInvalidToken = errors.New("auth: invalid access token")
)

// Claims are the access token claims. The linked user is both Subject and
// UserID so tokens from older issuers that only set user_id still verify.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 access tokens.
type Tokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens returns a signer for secret. A non-positive ttl means tokens
// never expire.
func NewTokens(secret, issuer string, ttl time.Duration) (*Tokens, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	return &Tokens{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// IssueAccessToken signs a token for userID.
func (t *Tokens) IssueAccessToken(userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("%w: empty user id", ErrInvalidToken)
	}
	now := t.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			Issuer:   t.issuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if t.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(t.ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// ParseAccessToken verifies token and returns the linked user id.
func (t *Tokens) ParseAccessToken(token string) (string, error) {
	if token == "" {
		return "", ErrMissingToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}

	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return "", ErrInvalidToken
	}

	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return "", fmt.Errorf("%w: no user in token", ErrInvalidToken)
	}
	return userID, nil
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

type ctxKey string

const userIDKey ctxKey = "user_id"

// WithUserID stores a verified user id on ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the user id stored by Middleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(userIDKey).(string)
	return uid, ok && uid != ""
}

// Middleware rejects requests without a valid bearer token. A nil Tokens
// lets every request through.
func (t *Tokens) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if t == nil {
			next.ServeHTTP(w, r)
			return
		}
		userID, err := t.ParseAccessToken(BearerToken(r))
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}
