package middleware // middleware contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
    "github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers
)

// parseUserToken validates a user JWT and returns its claims.  The token must
// be HS256-signed with the provided secret.
func parseUserToken(raw, secret string) (jwt.MapClaims, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, echo.ErrUnauthorized
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return nil, echo.ErrUnauthorized
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return nil, echo.ErrUnauthorized
    }
    return claims, nil
}

// storeUserClaims copies the identity claims into the Echo context so that
// handlers can access them via c.Get().  The numeric subject is normalised to
// uint64 under "user_id".
func storeUserClaims(c echo.Context, claims jwt.MapClaims) {
    if sub, ok := claims["sub"].(float64); ok {
        c.Set("user_id", uint64(sub))
    }
    if v, ok := claims["name"].(string); ok {
        c.Set("user_name", v)
    }
    if v, ok := claims["email"].(string); ok {
        c.Set("user_email", v)
    }
    if v, ok := claims["avatarUrl"].(string); ok {
        c.Set("user_avatar", v)
    }
    if v, ok := claims["isVerified"].(bool); ok {
        c.Set("user_verified", v)
    }
}

// UserAuth returns an Echo middleware that requires a valid Bearer user token.
// Protected routes wrapped with it can read the authenticated identity via
// `c.Get("user_id")` and the companion claim keys.
func UserAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not authorized. Please log in."})
            }
            claims, err := parseUserToken(strings.TrimPrefix(auth, "Bearer "), secret)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Session expired or invalid. Please log in again."})
            }
            storeUserClaims(c, claims)
            return next(c)
        }
    }
}

// RequireVerified blocks accounts that have not confirmed their email yet.
// Google sign-in accounts are verified on creation, so the claim is enough
// to decide.  Must run after UserAuth.
func RequireVerified() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if v, ok := c.Get("user_verified").(bool); !ok || !v {
                return c.JSON(http.StatusForbidden, echo.Map{"message": "Email not verified. Please verify your email to perform this action."})
            }
            return next(c)
        }
    }
}

// OptionalUserAuth behaves like UserAuth but lets unauthenticated requests
// through untouched.  A present-but-invalid token is still rejected so a
// stale session never silently downgrades to guest.
func OptionalUserAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return next(c)
            }
            claims, err := parseUserToken(strings.TrimPrefix(auth, "Bearer "), secret)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Session expired or invalid. Please log in again."})
            }
            storeUserClaims(c, claims)
            return next(c)
        }
    }
}
