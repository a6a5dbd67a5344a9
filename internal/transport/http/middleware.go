package http

import (
	"context"
	"net/http"
	"strings"

	"assettrack/internal/domain"
	"assettrack/internal/service"
)

type ctxKey string

const ctxKeyClaims ctxKey = "claims"

// RequireAuth decodes and verifies the bearer token, then stores the claims
// in the request context. Downstream handlers only ever see the verified
// account identifier.
func RequireAuth(tokens service.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, r, domain.ErrMissingToken)
				return
			}
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				writeError(w, r, domain.ErrMissingToken)
				return
			}
			claims, err := tokens.Verify(raw)
			if err != nil {
				writeError(w, r, domain.ErrInvalidToken)
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func claimsFromContext(ctx context.Context) (*service.Claims, bool) {
	c, ok := ctx.Value(ctxKeyClaims).(*service.Claims)
	return c, ok
}
