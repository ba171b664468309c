package auth

import (
	"context"

	"github.com/newsdesk/newsroom/internal/domain"
)

type contextKey string

const principalKey contextKey = "principal"

// ContextWithPrincipal returns a new context carrying the authenticated principal.
func ContextWithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext retrieves the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	if ctx == nil {
		return domain.Principal{}, false
	}
	value := ctx.Value(principalKey)
	if value == nil {
		return domain.Principal{}, false
	}
	p, ok := value.(domain.Principal)
	if !ok {
		return domain.Principal{}, false
	}
	return p, true
}
