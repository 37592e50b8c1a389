package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/feedback-board/internal/model"
	"github.com/iliyamo/feedback-board/internal/utils"
)

const userSecret = "user-test-secret"

func userToken(t *testing.T, verified bool) string {
	t.Helper()
	u := &model.User{ID: 7, Name: "Alice", Email: "alice@example.com", IsVerified: verified}
	tok, err := utils.NewUserToken(userSecret, u, 7)
	require.NoError(t, err)
	return tok.Token
}

func echoIdentity(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"userId":   c.Get("user_id"),
		"name":     c.Get("user_name"),
		"verified": c.Get("user_verified"),
	})
}

func TestUserAuthValidToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+userToken(t, true))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, UserAuth(userSecret)(echoIdentity)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"userId":7`)
	assert.Contains(t, rec.Body.String(), "Alice")
}

func TestUserAuthMissingHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, UserAuth(userSecret)(echoIdentity)(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not authorized. Please log in.")
}

func TestUserAuthBadToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, UserAuth(userSecret)(echoIdentity)(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Session expired or invalid")
}

func TestOptionalUserAuthNoHeaderPassesThrough(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/feedback", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, OptionalUserAuth(userSecret)(echoIdentity)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"userId":null`)
}

func TestOptionalUserAuthRejectsStaleToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/feedback", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, OptionalUserAuth(userSecret)(echoIdentity)(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireVerified(t *testing.T) {
	e := echo.New()

	run := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, "/api/user/profile", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		handler := UserAuth(userSecret)(RequireVerified()(echoIdentity))
		require.NoError(t, handler(c))
		return rec
	}

	rec := run(userToken(t, false))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email not verified")

	rec = run(userToken(t, true))
	assert.Equal(t, http.StatusOK, rec.Code)
}
