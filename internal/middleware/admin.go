package middleware

import (
    "errors"
    "net/http"
    "strings"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
)

// AdminAuth returns an Echo middleware that requires a valid admin token.
// The token is accepted from the Authorization header or from a `token`
// query parameter so that plain download links from the admin panel work.
// An expired token gets 401 with a re-login hint; a malformed or forged one
// gets 403.
func AdminAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw := c.QueryParam("token")
            if raw == "" {
                auth := c.Request().Header.Get("Authorization")
                if strings.HasPrefix(auth, "Bearer ") {
                    raw = strings.TrimPrefix(auth, "Bearer ")
                }
            }
            if raw == "" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Admin authentication required."})
            }

            tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
                if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
                    return nil, echo.ErrUnauthorized
                }
                return []byte(secret), nil
            })
            if err != nil {
                if errors.Is(err, jwt.ErrTokenExpired) {
                    return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Admin session expired. Please log in again."})
                }
                return c.JSON(http.StatusForbidden, echo.Map{"message": "Invalid admin token."})
            }
            claims, ok := tok.Claims.(jwt.MapClaims)
            if !ok || !tok.Valid {
                return c.JSON(http.StatusForbidden, echo.Map{"message": "Invalid admin token."})
            }

            if v, ok := claims["username"].(string); ok {
                c.Set("admin_username", v)
            }
            if v, ok := claims["adminId"].(float64); ok {
                c.Set("admin_id", uint64(v))
            }
            return next(c)
        }
    }
}
