package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/feedback-board/internal/utils"
)

const adminSecret = "admin-test-secret"

func adminEcho() (*echo.Echo, echo.HandlerFunc) {
	e := echo.New()
	ok := func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"username": c.Get("admin_username"),
		})
	}
	return e, ok
}

func runAdminAuth(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	e, ok := adminEcho()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := AdminAuth(adminSecret)(ok)(c)
	require.NoError(t, err)
	return rec
}

func TestAdminAuthMissingToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/admin/notifications", nil)
	rec := runAdminAuth(t, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Admin authentication required.")
}

func TestAdminAuthBearerToken(t *testing.T) {
	tok, err := utils.NewAdminToken(adminSecret, "boss", 1, 24)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/notifications", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := runAdminAuth(t, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "boss")
}

func TestAdminAuthQueryToken(t *testing.T) {
	tok, err := utils.NewAdminToken(adminSecret, "boss", 1, 24)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/file-manager?token="+tok.Token, nil)
	rec := runAdminAuth(t, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminAuthExpiredToken(t *testing.T) {
	claims := jwt.MapClaims{
		"username": "boss",
		"adminId":  float64(1),
		"exp":      time.Now().Add(-time.Hour).Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(adminSecret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := runAdminAuth(t, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Admin session expired")
}

func TestAdminAuthForgedToken(t *testing.T) {
	tok, err := utils.NewAdminToken("some-other-secret", "boss", 1, 24)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := runAdminAuth(t, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid admin token.")
}
