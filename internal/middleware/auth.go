package middleware

import (
	"context"
	"net/http"
	"strings"

	"go-git-cms/internal/model"
)

type contextKey string

const claimsKey contextKey = "auth_claims"

// tokenValidator is satisfied by the auth service.
type tokenValidator interface {
	ValidateToken(token string) (*model.AuthClaims, error)
}

func RequireAuth(validator tokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				unauthorized(w, "Missing Authorization header")
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				unauthorized(w, "Authorization header must be a Bearer token")
				return
			}

			claims, err := validator.ValidateToken(parts[1])
			if err != nil {
				unauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the authenticated claims, or nil for anonymous requests.
func ClaimsFromContext(ctx context.Context) *model.AuthClaims {
	claims, _ := ctx.Value(claimsKey).(*model.AuthClaims)
	return claims
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = jsonEncode(w, model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    "UNAUTHORIZED",
			Message: message,
		},
	})
}
