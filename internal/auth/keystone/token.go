package keystone

import (
	"errors"
	"fmt"
	"time"

	"github.com/MarcoTuMD/Template-Admin/internal/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid access token")

// Claims carried by keystone access tokens.
type Claims struct {
	Email    string `json:"email"`
	Provider string `json:"provider,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies short-lived HS256 access tokens.
type TokenIssuer struct {
	key    []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(key []byte, issuer string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		key:    key,
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a fresh token for cred. Every call yields a distinct token.
func (t *TokenIssuer) Issue(cred *auth.Credential) (string, error) {
	if cred == nil || cred.ID == "" {
		return "", errors.New("keystone: token for empty credential")
	}

	var provider string
	if len(cred.ProviderData) > 0 {
		provider = cred.ProviderData[0].ProviderID
	}

	now := t.now()
	claims := Claims{
		Email:    cred.Email,
		Provider: provider,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    t.issuer,
			Subject:   cred.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", fmt.Errorf("keystone: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses raw and returns its claims, or ErrInvalidToken.
func (t *TokenIssuer) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return t.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}
