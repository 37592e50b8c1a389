package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/feedback-board/internal/model"
)

func parseClaims(t *testing.T, raw, secret string) jwt.MapClaims {
	t.Helper()
	tok, err := jwt.Parse(raw, func(tok *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, tok.Valid)
	claims, ok := tok.Claims.(jwt.MapClaims)
	require.True(t, ok)
	return claims
}

func TestNewUserTokenClaims(t *testing.T) {
	hash := "$2a$10$abcdefghijklmnopqrstuv"
	u := &model.User{
		ID:           42,
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: &hash,
		AvatarURL:    "https://cdn.example.com/a.png",
		LoginMethod:  "email",
		IsVerified:   true,
	}

	ut, err := NewUserToken("secret", u, 7)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC().Add(7*24*time.Hour), ut.Exp, time.Minute)

	claims := parseClaims(t, ut.Token, "secret")
	assert.EqualValues(t, 42, claims["sub"])
	assert.Equal(t, "Alice", claims["name"])
	assert.Equal(t, "alice@example.com", claims["email"])
	assert.Equal(t, "https://cdn.example.com/a.png", claims["avatarUrl"])
	assert.Equal(t, "email", claims["loginMethod"])
	assert.Equal(t, true, claims["isVerified"])
	assert.Equal(t, false, claims["hasCustomAvatar"])
	assert.Equal(t, true, claims["hasPassword"])
}

func TestNewUserTokenRejectsWrongSecret(t *testing.T) {
	u := &model.User{ID: 1, Name: "Bob", Email: "bob@example.com"}
	ut, err := NewUserToken("secret", u, 7)
	require.NoError(t, err)

	_, err = jwt.Parse(ut.Token, func(tok *jwt.Token) (interface{}, error) {
		return []byte("other"), nil
	})
	assert.Error(t, err)
}

func TestNewAdminTokenClaims(t *testing.T) {
	ut, err := NewAdminToken("admin-secret", "boss", 3, 24)
	require.NoError(t, err)

	claims := parseClaims(t, ut.Token, "admin-secret")
	assert.Equal(t, "boss", claims["username"])
	assert.EqualValues(t, 3, claims["adminId"])

	at, ok := claims["loggedInAt"].(string)
	require.True(t, ok)
	_, err = time.Parse(time.RFC3339, at)
	assert.NoError(t, err)
}

func TestNewOTPShape(t *testing.T) {
	otp, err := NewOTP()
	require.NoError(t, err)
	assert.Len(t, otp, 6)
	for _, r := range otp {
		assert.Contains(t, "0123456789ABCDEF", string(r))
	}
}

func TestNewActionTokenLengthAndUniqueness(t *testing.T) {
	a, err := NewActionToken()
	require.NoError(t, err)
	b, err := NewActionToken()
	require.NoError(t, err)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter22", 4)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "hunter22"))
	assert.False(t, VerifyPassword(hash, "hunter23"))
	assert.False(t, VerifyPassword("not-a-hash", "hunter22"))
}

func TestNewGuestIDShape(t *testing.T) {
	a := NewGuestID()
	b := NewGuestID()
	assert.True(t, len(a) > len("guest_"))
	assert.Contains(t, a, "guest_")
	assert.NotEqual(t, a, b)
}
