package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/maya-ai/engine/internal/models"
)

var testSecret = []byte("auth-test-secret")

func signToken(t *testing.T, secret []byte, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString(secret)
	require.NoError(t, err)
	return s
}

func TestAuth(t *testing.T) {
	var gotUserID, gotRole string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = GetUserID(r.Context())
		gotRole = GetRole(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := Auth(testSecret)(next)

	t.Run("valid token passes claims through", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{
			"sub":  "8b1f8f2e-0000-4000-8000-000000000001",
			"role": models.RoleUser,
			"exp":  time.Now().Add(time.Hour).Unix(),
		})
		req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "8b1f8f2e-0000-4000-8000-000000000001", gotUserID)
		require.Equal(t, models.RoleUser, gotRole)
	})

	// every rejection is the same plain 401, regardless of why
	t.Run("rejections are uniform", func(t *testing.T) {
		expired := signToken(t, testSecret, jwt.MapClaims{
			"sub": "8b1f8f2e-0000-4000-8000-000000000001",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})
		wrongKey := signToken(t, []byte("other-secret"), jwt.MapClaims{
			"sub": "8b1f8f2e-0000-4000-8000-000000000001",
			"exp": time.Now().Add(time.Hour).Unix(),
		})

		cases := []struct {
			name   string
			header string
		}{
			{"missing header", ""},
			{"not bearer", "Basic abc123"},
			{"garbage token", "Bearer not.a.jwt"},
			{"expired token", "Bearer " + expired},
			{"wrong signing key", "Bearer " + wrongKey},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
				if tc.header != "" {
					req.Header.Set("Authorization", tc.header)
				}
				rec := httptest.NewRecorder()

				handler.ServeHTTP(rec, req)

				require.Equal(t, http.StatusUnauthorized, rec.Code)
				require.Equal(t, http.StatusText(http.StatusUnauthorized)+"\n", rec.Body.String())
			})
		}
	})
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := Auth(testSecret)(RequireAdmin(next))

	t.Run("admin role allowed", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{
			"sub":  "8b1f8f2e-0000-4000-8000-000000000002",
			"role": models.RoleAdmin,
			"exp":  time.Now().Add(time.Hour).Unix(),
		})
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("user role forbidden", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{
			"sub":  "8b1f8f2e-0000-4000-8000-000000000001",
			"role": models.RoleUser,
			"exp":  time.Now().Add(time.Hour).Unix(),
		})
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
	})
}
