package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/diagnosis/visitor-hosts/internal/http/response"
	"github.com/diagnosis/visitor-hosts/pkg/auth"
	"github.com/diagnosis/visitor-hosts/pkg/logger"
)

type ctxKey string

const CtxClaims ctxKey = "claims"

// RequireRole accepts bearer tokens signed with secret whose role is one of
// roles (case-insensitive).
func RequireRole(secret string, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := auth.FromHeader(r.Header.Get("Authorization"), secret)
			if errors.Is(err, auth.ErrMissingBearer) {
				response.Unauthorized(w, "invalid authorization header")
				return
			}
			if err != nil {
				logger.DebugContext(r.Context(), "rejected bearer token", "error", err)
				response.WriteError(w, http.StatusUnauthorized, "invalid authorization token", response.CodeInvalidToken)
				return
			}
			if !hasRole(claims.Role, roles) {
				response.Forbidden(w, "insufficient role")
				return
			}
			ctx := context.WithValue(r.Context(), CtxClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func hasRole(role string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(role, a) {
			return true
		}
	}
	return false
}

func Claims(r *http.Request) *auth.Claims {
	v := r.Context().Value(CtxClaims)
	if v == nil {
		return nil
	}
	return v.(*auth.Claims)
}
