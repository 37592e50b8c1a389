package model

import "time"

// PushSubscription is a stored Web Push subscription, one per user.  The
// endpoint plus the p256dh/auth keys are everything a push relay needs to
// address the browser.
type PushSubscription struct {
    ID        uint64    // push_subscriptions.id
    UserID    uint64    // push_subscriptions.user_id
    Endpoint  string    // push_subscriptions.endpoint
    P256DH    string    // push_subscriptions.p256dh
    Auth      string    // push_subscriptions.auth
    CreatedAt time.Time // push_subscriptions.created_at
}
