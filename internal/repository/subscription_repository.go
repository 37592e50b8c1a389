package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/feedback-board/internal/model"
)

type SubscriptionRepo struct{ DB *sql.DB }

func NewSubscriptionRepo(db *sql.DB) *SubscriptionRepo { return &SubscriptionRepo{DB: db} }

// Upsert stores a user's push subscription, replacing any previous one.  One
// subscription per user: re-subscribing from a new browser moves the user.
func (r *SubscriptionRepo) Upsert(ctx context.Context, userID uint64, endpoint, p256dh, auth string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO push_subscriptions (user_id,endpoint,p256dh,auth) VALUES (?,?,?,?)
		 ON DUPLICATE KEY UPDATE endpoint=VALUES(endpoint), p256dh=VALUES(p256dh), auth=VALUES(auth)`,
		userID, endpoint, p256dh, auth)
	return err
}

// GetByUserID returns a user's stored subscription.
func (r *SubscriptionRepo) GetByUserID(ctx context.Context, userID uint64) (model.PushSubscription, error) {
	var s model.PushSubscription
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,user_id,endpoint,p256dh,auth,created_at FROM push_subscriptions WHERE user_id=? LIMIT 1",
		userID).Scan(&s.ID, &s.UserID, &s.Endpoint, &s.P256DH, &s.Auth, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return s, ErrNotFound
	}
	return s, err
}
