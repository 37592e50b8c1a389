package model

import "time"

// User represents an account record as stored in the `users` table.  Each
// field corresponds to a column.  The json tags are omitted here because
// these structs are used internally by the repository layer; handlers define
// separate response types with appropriate JSON tags.
//
// An account signed up by email carries a password hash; one created through
// Google sign-in carries a Google subject id instead.  A Google account may
// later set a password, at which point LoginMethod flips to "email" while
// GoogleID remains for continued Google sign-in.
//
// Fields:
//  ID              – primary key identifier of the user.
//  Name            – display name.
//  Email           – unique, lowercased email address.
//  PasswordHash    – bcrypt hashed password (nil for Google-only accounts).
//  GoogleID        – Google subject id (nil for email-only accounts).
//  AvatarURL       – current avatar image URL.
//  HasCustomAvatar – true once the user picked or uploaded an avatar,
//                    preventing Google profile pictures from overwriting it.
//  IsVerified      – email verification state (always true for Google users).
//  LoginMethod     – "email" or "google".
//  VerifyToken     – outstanding email verification token (nullable).
//  VerifyExpires   – verification token expiry (nullable).
//  ResetToken      – outstanding password reset token (nullable).
//  ResetExpires    – reset token expiry (nullable).
//  CreatedAt       – timestamp of creation.
//  UpdatedAt       – timestamp of last update.
type User struct {
    ID              uint64     // users.id
    Name            string     // users.name
    Email           string     // users.email
    PasswordHash    *string    // users.password_hash (nullable)
    GoogleID        *string    // users.google_id (nullable)
    AvatarURL       string     // users.avatar_url
    HasCustomAvatar bool       // users.has_custom_avatar
    IsVerified      bool       // users.is_verified
    LoginMethod     string     // users.login_method
    VerifyToken     *string    // users.verify_token (nullable)
    VerifyExpires   *time.Time // users.verify_expires (nullable)
    ResetToken      *string    // users.reset_token (nullable)
    ResetExpires    *time.Time // users.reset_expires (nullable)
    CreatedAt       time.Time  // users.created_at
    UpdatedAt       time.Time  // users.updated_at
}

// HasPassword reports whether the account can log in with a password.
func (u *User) HasPassword() bool { return u.PasswordHash != nil && *u.PasswordHash != "" }

// LoginMethod values for users.login_method.
const (
    LoginMethodEmail  = "email"
    LoginMethodGoogle = "google"
)
