package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"community-backend/internal/domain"
	"community-backend/internal/security"
)

type contextKey string

const claimsKey contextKey = "claims"

// AuthMiddleware validates the bearer token and stores the caller's claims
// in the request context.
func AuthMiddleware(tokens security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
				return
			}
			claims, err := tokens.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				respondJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
				return
			}
			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// callerClaims extracts the authenticated caller's claims from the context.
func callerClaims(r *http.Request) (*security.UserClaims, bool) {
	claims, ok := r.Context().Value(claimsKey).(*security.UserClaims)
	return claims, ok
}

func callerID(r *http.Request) (uuid.UUID, bool) {
	claims, ok := callerClaims(r)
	if !ok {
		return uuid.Nil, false
	}
	return claims.MemberID, true
}

// RequireAdminRole rejects callers whose token does not carry an
// admin-capable role claim. Services re-check authorization against the
// stored member record; this guard just keeps non-admin traffic out early.
func RequireAdminRole(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := callerClaims(r)
		if !ok {
			respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
			return
		}
		if claims.Role != string(domain.RoleAdministrator) {
			respondJSON(w, http.StatusForbidden, errorResponse{Error: "administrator role required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
