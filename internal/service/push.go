package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/feedback-board/internal/model"
	"github.com/iliyamo/feedback-board/internal/repository"
)

// PushNotifier is the web-push boundary. Subscriptions are stored by the
// subscription repository; actual VAPID signing and delivery happen in an
// external relay, so this service only resolves the target subscription and
// records the notification intent.
type PushNotifier struct {
	Subs *repository.SubscriptionRepo
}

// NotifyUser records a push notification aimed at one user. Missing
// subscriptions are a normal outcome and are skipped silently.
func (p *PushNotifier) NotifyUser(ctx context.Context, userID uint64, title, body string) {
	sub, err := p.Subs.GetByUserID(ctx, userID)
	if err != nil {
		if err != repository.ErrNotFound {
			logrus.WithError(err).Warn("push: subscription lookup failed")
		}
		return
	}
	p.deliver(sub, title, body)
}

// NotifyAdmin records a push notification aimed at the moderator console.
// The admin console is not a user row, so there is no subscription lookup;
// the intent goes straight to the relay boundary.
func (p *PushNotifier) NotifyAdmin(title, body string) {
	logrus.WithField("title", title).Info("push: admin notification queued: " + body)
}

func (p *PushNotifier) deliver(sub model.PushSubscription, title, body string) {
	logrus.WithFields(logrus.Fields{
		"endpoint": sub.Endpoint,
		"title":    title,
	}).Info("push: notification queued: " + body)
}
