package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/feedback-board/internal/config"
	"github.com/iliyamo/feedback-board/internal/model"
	"github.com/iliyamo/feedback-board/internal/queue"
	"github.com/iliyamo/feedback-board/internal/repository"
	"github.com/iliyamo/feedback-board/internal/service"
)

const (
	tickEvery    = 30 * time.Minute
	minUnreplied = 4 * time.Hour  // leave the human admin a head start
	maxUnreplied = 24 * time.Hour // anything older is stale, skip it
	batchSize    = 10
	toneSamples  = 5
)

// AutoResponder periodically answers feedback the admin has not replied to
// within the grace window, imitating the tone of recent human replies.
type AutoResponder struct {
	Cfg      config.Config
	Feedback *repository.FeedbackRepo
	Replies  *repository.ReplyRepo
	Users    *repository.UserRepo
	Gemini   *service.GeminiClient
	Email    *service.EmailClient // nil when the relay is not configured
}

// Start launches the responder loop.  It returns immediately; the loop
// stops when ctx is cancelled.  A nil Gemini client disables the responder.
func (a *AutoResponder) Start(ctx context.Context) {
	if a.Gemini == nil {
		logrus.Info("auto-responder disabled: no Gemini API key configured")
		return
	}
	go func() {
		ticker := time.NewTicker(tickEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				a.runOnce(ctx)
			}
		}
	}()
}

// runOnce processes one batch of overdue feedback.
func (a *AutoResponder) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	pending, err := a.Feedback.ListUnansweredBetween(runCtx, minUnreplied, maxUnreplied, batchSize)
	if err != nil {
		logrus.WithError(err).Error("auto-responder: loading pending feedback failed")
		return
	}
	if len(pending) == 0 {
		return
	}

	tone, err := a.Replies.RecentHumanReplies(runCtx, service.BotFilterName, toneSamples)
	if err != nil {
		logrus.WithError(err).Warn("auto-responder: loading tone context failed")
	}
	toneTexts := make([]string, 0, len(tone))
	for _, r := range tone {
		toneTexts = append(toneTexts, r.Body)
	}

	for _, fb := range pending {
		// Re-check right before replying: a human may have answered since
		// the batch was selected.
		n, err := a.Replies.CountFor(runCtx, fb.ID)
		if err != nil {
			logrus.WithError(err).WithField("feedback_id", fb.ID).Warn("auto-responder: reply recheck failed")
			continue
		}
		if n > 0 {
			if err := a.Feedback.MarkAIProcessed(runCtx, fb.ID); err != nil {
				logrus.WithError(err).WithField("feedback_id", fb.ID).Warn("auto-responder: marking processed failed")
			}
			continue
		}

		text, err := a.Gemini.GenerateReply(runCtx, fb.Body, fb.Name, toneTexts)
		if err != nil {
			logrus.WithError(err).WithField("feedback_id", fb.ID).Warn("auto-responder: generation failed")
			continue
		}

		reply, err := a.Replies.Add(runCtx, fb.ID, service.BotDisplayName, text)
		if err != nil {
			logrus.WithError(err).WithField("feedback_id", fb.ID).Error("auto-responder: saving reply failed")
			continue
		}
		if err := a.Feedback.MarkAIProcessed(runCtx, fb.ID); err != nil {
			logrus.WithError(err).WithField("feedback_id", fb.ID).Warn("auto-responder: marking processed failed")
		}

		service.PublishFeedbackEvent(runCtx, queue.FeedbackEvent{
			Kind:       queue.KindReplyCreated,
			FeedbackID: fb.ID,
			AdminName:  reply.AdminName,
			ReplyBody:  reply.Body,
			CreatedAt:  reply.CreatedAt.Format(time.RFC3339),
		})

		a.mailSubmitter(runCtx, fb, reply.Body)

		logrus.WithFields(logrus.Fields{
			"feedback_id": fb.ID,
			"reply_id":    reply.ID,
		}).Info("auto-responder: replied")
	}
}

// mailSubmitter tells account-backed submitters their feedback got a reply.
func (a *AutoResponder) mailSubmitter(ctx context.Context, fb model.Feedback, replyText string) {
	if a.Email == nil || fb.UserID == nil {
		return
	}
	u, err := a.Users.GetByID(ctx, *fb.UserID)
	if err != nil {
		return
	}
	link := a.Cfg.FrontendURL + "/index.html?feedbackId=" + strconv.FormatUint(fb.ID, 10)
	msg := service.EmailMessage{
		To:      u.Email,
		Subject: "Your feedback got a reply",
		HTML: fmt.Sprintf(`<p>Hello <strong>%s</strong>,</p><p>Your feedback received a reply:</p><blockquote>%s</blockquote><p><a href="%s">View Reply Now</a></p>`,
			u.Name, replyText, link),
		Text: fmt.Sprintf("Your feedback received a reply: %s", replyText),
	}
	if err := a.Email.Send(ctx, msg); err != nil {
		logrus.WithError(err).WithField("feedback_id", fb.ID).Warn("auto-responder: notification mail failed")
	}
}
