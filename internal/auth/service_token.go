package auth

import (
	"context"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// TokenProvider supplies bearer tokens for calls to downstream services.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenProvider returns a fixed token.
type StaticTokenProvider string

// Token implements TokenProvider.
func (s StaticTokenProvider) Token(context.Context) (string, error) {
	return string(s), nil
}

// TokenManager issues short-lived HS256 service tokens scoped to one audience.
type TokenManager struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret, issuer, audience string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &TokenManager{secret: []byte(secret), issuer: issuer, audience: audience, ttl: ttl, now: time.Now}
}

// Token implements TokenProvider.
func (tm *TokenManager) Token(context.Context) (string, error) {
	token, _, err := tm.GenerateToken()
	return token, err
}

// GenerateToken builds and signs a service JWT.
func (tm *TokenManager) GenerateToken() (string, time.Time, error) {
	issuedAt := tm.now()
	expiresAt := issuedAt.Add(tm.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    tm.issuer,
		Subject:   tm.issuer,
		Audience:  jwt.ClaimStrings{tm.audience},
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// NewServiceTokenProvider picks a static token, a signed token, or none for a collaborator.
func NewServiceTokenProvider(staticToken string, useSigned bool, secret, issuer, audience string, ttl time.Duration) TokenProvider {
	switch {
	case staticToken != "":
		return StaticTokenProvider(staticToken)
	case useSigned:
		return NewTokenManager(secret, issuer, audience, ttl)
	default:
		return nil
	}
}
