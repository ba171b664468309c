// Package auth supplies the authenticated principal for lifecycle commands.
// Credentials are bearer JWTs; the session-issuing side lives outside this
// service.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/newsdesk/newsroom/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// PrincipalProvider resolves a bearer credential to an authenticated principal.
type PrincipalProvider interface {
	Authenticate(ctx context.Context, token string) (domain.Principal, error)
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTProvider verifies HMAC-signed tokens carrying the principal id in the
// subject and the role as a custom claim.
type JWTProvider struct {
	secret []byte
}

// NewJWTProvider builds a provider around a shared signing secret.
func NewJWTProvider(secret string) *JWTProvider {
	return &JWTProvider{secret: []byte(secret)}
}

func (p *JWTProvider) Authenticate(_ context.Context, token string) (domain.Principal, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return domain.Principal{}, fmt.Errorf("%w: invalid claims", domain.ErrUnauthenticated)
	}

	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: bad subject", domain.ErrUnauthenticated)
	}
	role, err := domain.ParseRole(c.Role)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: bad role %q", domain.ErrUnauthenticated, c.Role)
	}

	return domain.Principal{ID: id, Role: role}, nil
}

// IssueToken mints a token for the given principal. Used by tests and by the
// operator tooling; the production identity service issues its own.
func (p *JWTProvider) IssueToken(principal domain.Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: string(principal.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
