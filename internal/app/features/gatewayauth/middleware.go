package gatewayauth

import (
	"context"
	"net/http"
	"strings"

	"github.com/stoutly/stoutly/internal/app/system/normalize"
	"go.uber.org/zap"
)

type contextKey string

const claimsKey contextKey = "gatewayauth.claims"

// AdminClaims returns the verified console claims from the request
// context, or nil outside the admin middleware.
func AdminClaims(ctx context.Context) *Claims {
	c, _ := ctx.Value(claimsKey).(*Claims)
	return c
}

// RequireAdmin authenticates the bearer token and authorizes the
// caller against the allow-list. A missing or invalid token is 401; a
// valid token for an email outside the allow-list is 403. The two are
// never conflated.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		claims, err := h.Tokens.VerifyAdmin(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !h.allowed(claims.Email) {
			h.Log.Warn("console token for email outside allow-list",
				zap.String("email", claims.Email))
			writeError(w, http.StatusForbidden, "Access denied")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) allowed(email string) bool {
	_, ok := h.AllowEmails[normalize.Email(email)]
	return ok
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}
