package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hbomb79/mediaprobe/internal/api/auth"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func token(t *testing.T, key string, method jwt.SigningMethod, roles []string, expiry time.Time) string {
	claims := jwt.MapClaims{"sub": "user-1", "roles": roles, "exp": expiry.Unix()}
	signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(key))
	require.NoError(t, err)

	return signed
}

func Test_RequireRole(t *testing.T) {
	future := time.Now().Add(time.Hour)
	tests := []struct {
		summary  string
		request  func(r *http.Request)
		expected int
	}{
		{"no token", func(r *http.Request) {}, http.StatusUnauthorized},
		{"malformed header", func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Basic abc") }, http.StatusUnauthorized},
		{
			"wrong secret",
			func(r *http.Request) {
				r.Header.Set(echo.HeaderAuthorization, "Bearer "+token(t, "other", jwt.SigningMethodHS256, []string{auth.SuperAdminRole}, future))
			},
			http.StatusUnauthorized,
		},
		{
			"expired",
			func(r *http.Request) {
				r.Header.Set(echo.HeaderAuthorization, "Bearer "+token(t, secret, jwt.SigningMethodHS256, []string{auth.SuperAdminRole}, time.Now().Add(-time.Hour)))
			},
			http.StatusUnauthorized,
		},
		{
			"missing role",
			func(r *http.Request) {
				r.Header.Set(echo.HeaderAuthorization, "Bearer "+token(t, secret, jwt.SigningMethodHS256, []string{"editor"}, future))
			},
			http.StatusForbidden,
		},
		{
			"bearer with role",
			func(r *http.Request) {
				r.Header.Set(echo.HeaderAuthorization, "Bearer "+token(t, secret, jwt.SigningMethodHS256, []string{"editor", auth.SuperAdminRole}, future))
			},
			http.StatusOK,
		},
		{
			"cookie with role",
			func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: "auth-token", Value: token(t, secret, jwt.SigningMethodHS256, []string{auth.SuperAdminRole}, future)})
			},
			http.StatusOK,
		},
	}

	checker := auth.NewJwtRoleChecker(secret)
	ec := echo.New()
	ec.GET("/protected", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, checker.RequireRole(auth.SuperAdminRole))

	for _, tt := range tests {
		t.Run(tt.summary, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			tt.request(req)
			rec := httptest.NewRecorder()

			ec.ServeHTTP(rec, req)
			assert.Equal(t, tt.expected, rec.Code)
		})
	}
}
