package utils // package utils provides helper functions for token creation and hashing

import (
    "crypto/rand"   // secure random number generation
    "encoding/hex"  // hex encoding functions
    "strings"       // uppercase conversion for OTP codes
    "time"          // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens

    "github.com/iliyamo/feedback-board/internal/model"
)

// UserToken is a signed JWT handed to site visitors after signup, login or
// Google sign-in, together with its expiry.  The claims mirror the public
// user payload so the frontend can render the session without an extra
// round-trip.
type UserToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// NewUserToken builds and signs an HS256 JWT for a user.  Besides the
// standard sub/exp/iat claims it embeds the display fields the frontend
// reads directly from the token payload.
func NewUserToken(secret string, u *model.User, ttlDays int) (UserToken, error) {
    exp := time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour)
    claims := jwt.MapClaims{
        "sub":             u.ID,
        "name":            u.Name,
        "email":           u.Email,
        "avatarUrl":       u.AvatarURL,
        "loginMethod":     u.LoginMethod,
        "isVerified":      u.IsVerified,
        "hasCustomAvatar": u.HasCustomAvatar,
        "hasPassword":     u.HasPassword(),
        "exp":             exp.Unix(),
        "iat":             time.Now().UTC().Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return UserToken{}, err
    }
    return UserToken{Token: signed, Exp: exp}, nil
}

// NewAdminToken builds and signs an HS256 JWT for the admin panel.  Admin
// tokens are signed with a separate secret and carry only the moderator
// identity plus the login instant.
func NewAdminToken(secret, username string, adminID uint64, ttlHours int) (UserToken, error) {
    now := time.Now().UTC()
    exp := now.Add(time.Duration(ttlHours) * time.Hour)
    claims := jwt.MapClaims{
        "username":   username,
        "adminId":    adminID,
        "loggedInAt": now.Format(time.RFC3339),
        "exp":        exp.Unix(),
        "iat":        now.Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return UserToken{}, err
    }
    return UserToken{Token: signed, Exp: exp}, nil
}

// NewActionToken returns a cryptographically secure random token for
// email-verification and password-reset links.  32 bytes -> 64 hex chars.
func NewActionToken() (string, error) {
    return randomHex(32)
}

// NewOTP returns a short uppercase hex one-time code for the admin login
// second step.  3 bytes -> 6 hex chars.
func NewOTP() (string, error) {
    s, err := randomHex(3)
    if err != nil {
        return "", err
    }
    return strings.ToUpper(s), nil
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
    buf := make([]byte, n)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return hex.EncodeToString(buf), nil
}
