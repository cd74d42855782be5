package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"go-git-cms/internal/model"
)

type fakeValidator struct {
	claims *model.AuthClaims
	err    error
}

func (f *fakeValidator) ValidateToken(string) (*model.AuthClaims, error) {
	return f.claims, f.err
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	t.Run("passes claims through the context", func(t *testing.T) {
		validator := &fakeValidator{claims: &model.AuthClaims{Email: "admin@example.com"}}

		var seen *model.AuthClaims
		handler := RequireAuth(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = ClaimsFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer some-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seen)
		require.Equal(t, "admin@example.com", seen.Email)
	})

	t.Run("rejects a missing header", func(t *testing.T) {
		handler := RequireAuth(&fakeValidator{})(okHandler())

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects a non-bearer scheme", func(t *testing.T) {
		handler := RequireAuth(&fakeValidator{})(okHandler())

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects an invalid token", func(t *testing.T) {
		validator := &fakeValidator{err: errors.New("expired")}
		handler := RequireAuth(validator)(okHandler())

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer stale")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestClaimsFromContextWithoutAuth(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.Nil(t, ClaimsFromContext(req.Context()))
}
