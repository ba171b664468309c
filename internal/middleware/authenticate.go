package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/newsdesk/newsroom/internal/auth"
)

// Authenticate resolves a bearer credential, when present, into a principal on
// the request context. Requests without an Authorization header pass through
// anonymously; whether anonymity is acceptable is decided per endpoint.
func Authenticate(provider auth.PrincipalProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				unauthorized(w, "malformed authorization header")
				return
			}

			principal, err := provider.Authenticate(r.Context(), token)
			if err != nil {
				unauthorized(w, "invalid credential")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.ContextWithPrincipal(r.Context(), principal)))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
