package model

import "time"

// Admin is a moderator account for the admin panel.  The first row is seeded
// from ADMIN_USERNAME / ADMIN_INITIAL_PASSWORD on the first login attempt.
// Login is two-step: password check, then a short-lived OTP mailed to the
// configured admin address.
type Admin struct {
    ID           uint64     // admins.id
    Username     string     // admins.username
    PasswordHash string     // admins.password_hash
    OTPCode      *string    // admins.otp_code (nullable)
    OTPExpires   *time.Time // admins.otp_expires (nullable)
    CreatedAt    time.Time  // admins.created_at
}

// AdminSettings stores the per-admin notification cursor.  Feedback created
// after LastSeenFeedbackAt counts as unread in the admin panel.
type AdminSettings struct {
    AdminID            uint64    // admin_settings.admin_id
    LastSeenFeedbackAt time.Time // admin_settings.last_seen_feedback_at
}
