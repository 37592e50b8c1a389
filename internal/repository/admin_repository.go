package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/feedback-board/internal/model"
	"github.com/iliyamo/feedback-board/internal/utils"
)

type AdminRepo struct{ DB *sql.DB }

func NewAdminRepo(db *sql.DB) *AdminRepo { return &AdminRepo{DB: db} }

// GetByUsername fetches a moderator account.
func (r *AdminRepo) GetByUsername(ctx context.Context, username string) (model.Admin, error) {
	var a model.Admin
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,username,password_hash,otp_code,otp_expires,created_at FROM admins WHERE username=? LIMIT 1",
		username).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.OTPCode, &a.OTPExpires, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return a, ErrNotFound
	}
	return a, err
}

// Seed creates the moderator account from the configured initial password.
// Called lazily on the first login attempt.
func (r *AdminRepo) Seed(ctx context.Context, username, initialPassword string, cost int) (model.Admin, error) {
	hash, err := utils.HashPassword(initialPassword, cost)
	if err != nil {
		return model.Admin{}, err
	}
	if _, err := r.DB.ExecContext(ctx,
		"INSERT INTO admins (username,password_hash) VALUES (?,?)", username, hash); err != nil {
		return model.Admin{}, err
	}
	return r.GetByUsername(ctx, username)
}

// SetOTP stores a login one-time code valid for ttl.
func (r *AdminRepo) SetOTP(ctx context.Context, id uint64, code string, ttl time.Duration) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE admins SET otp_code=?, otp_expires=? WHERE id=?",
		code, time.Now().UTC().Add(ttl), id)
	return err
}

// ClearOTP wipes any outstanding code, both after successful verification
// and after an expired attempt so stale codes cannot be retried.
func (r *AdminRepo) ClearOTP(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE admins SET otp_code=NULL, otp_expires=NULL WHERE id=?", id)
	return err
}

// LastSeenFeedbackAt returns the admin's notification cursor; the zero time
// when none has been stored yet.
func (r *AdminRepo) LastSeenFeedbackAt(ctx context.Context, adminID uint64) (time.Time, error) {
	var t time.Time
	err := r.DB.QueryRowContext(ctx,
		"SELECT last_seen_feedback_at FROM admin_settings WHERE admin_id=?", adminID).Scan(&t)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	return t, err
}

// MarkSeen moves the notification cursor to now and returns the stored
// instant.
func (r *AdminRepo) MarkSeen(ctx context.Context, adminID uint64) (time.Time, error) {
	now := time.Now().UTC()
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO admin_settings (admin_id,last_seen_feedback_at) VALUES (?,?)
		 ON DUPLICATE KEY UPDATE last_seen_feedback_at=VALUES(last_seen_feedback_at)`,
		adminID, now)
	return now, err
}
