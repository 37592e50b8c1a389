package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/feedback-board/internal/config"
	"github.com/iliyamo/feedback-board/internal/queue"
	"github.com/iliyamo/feedback-board/internal/repository"
	"github.com/iliyamo/feedback-board/internal/service"
)

// AdminFeedbackHandler bundles dependencies for the moderation endpoints.
type AdminFeedbackHandler struct {
	Cfg      config.Config
	Feedback *repository.FeedbackRepo
	Replies  *repository.ReplyRepo
	Users    *repository.UserRepo
	Avatars  *repository.AvatarRepo
	Push     *service.PushNotifier
	Email    *service.EmailClient // nil when the relay is not configured
}

type batchDeleteReq struct {
	IDs []uint64 `json:"ids"`
}

type replyReq struct {
	ReplyText string `json:"replyText"`
}

type updateReplyReq struct {
	Text string `json:"text"`
}

type pinReq struct {
	IsPinned *bool `json:"isPinned"`
}

func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// Delete removes one feedback entry.
func (h *AdminFeedbackHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid feedback id."})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Feedback.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "ID not found."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not delete feedback."})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Deleted."})
}

// BatchDelete removes a set of entries at once.
func (h *AdminFeedbackHandler) BatchDelete(c echo.Context) error {
	var req batchDeleteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}
	if len(req.IDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "No IDs."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	deleted, err := h.Feedback.DeleteBatch(ctx, req.IDs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not delete feedbacks."})
	}
	if deleted == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "None found."})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":      fmt.Sprintf("%d deleted.", deleted),
		"deletedCount": deleted,
	})
}

// Reply appends an admin reply under the fixed display name and notifies
// the submitter by push and email when the entry belongs to an account.
func (h *AdminFeedbackHandler) Reply(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid feedback id."})
	}
	var req replyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}
	if strings.TrimSpace(req.ReplyText) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Reply text missing."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	fb, err := h.Feedback.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "ID not found."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not save reply."})
	}

	reply, err := h.Replies.Add(ctx, id, h.Cfg.AdminDisplayName, req.ReplyText)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not save reply."})
	}

	go service.PublishFeedbackEvent(context.Background(), queue.FeedbackEvent{
		Kind:       queue.KindReplyCreated,
		FeedbackID: id,
		AdminName:  reply.AdminName,
		ReplyBody:  reply.Body,
		CreatedAt:  reply.CreatedAt.Format(time.RFC3339),
	})

	if fb.UserID != nil {
		h.Push.NotifyUser(ctx, *fb.UserID, "Admin replied to your feedback", reply.Body)
		if u, uerr := h.Users.GetByID(ctx, *fb.UserID); uerr == nil && h.Email != nil {
			subject := "Admin Reply: " + truncate(fb.Body, 30) + "..."
			link := h.Cfg.FrontendURL + "/index.html?feedbackId=" + strconv.FormatUint(fb.ID, 10)
			msg := service.EmailMessage{
				To:      u.Email,
				Subject: subject,
				HTML:    fmt.Sprintf(`<p>Hello <strong>%s</strong>,</p><p>An admin replied to your feedback:</p><blockquote>%s</blockquote><p><a href="%s">View Reply Now</a></p>`, u.Name, reply.Body, link),
				Text:    fmt.Sprintf("Admin %s has replied to your feedback: %s", reply.AdminName, reply.Body),
			}
			if serr := h.Email.Send(ctx, msg); serr != nil {
				logrus.WithError(serr).Warn("sending reply notification mail failed")
			}
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Replied.",
		"reply":   replyView{ID: reply.ID, AdminName: reply.AdminName, Text: reply.Body, Timestamp: reply.CreatedAt},
	})
}

// UpdateReply edits a reply's text; the stored author name is kept.
func (h *AdminFeedbackHandler) UpdateReply(c echo.Context) error {
	fid, err := pathID(c, "feedbackId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid feedback id."})
	}
	rid, err := pathID(c, "replyId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid reply id."})
	}
	var req updateReplyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}
	if strings.TrimSpace(req.Text) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Reply text cannot be empty."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Replies.Update(ctx, fid, rid, req.Text); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Feedback or reply not found."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not update reply."})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Reply updated successfully."})
}

// DeleteReply removes one reply from a thread.
func (h *AdminFeedbackHandler) DeleteReply(c echo.Context) error {
	fid, err := pathID(c, "feedbackId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid feedback id."})
	}
	rid, err := pathID(c, "replyId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid reply id."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Replies.Delete(ctx, fid, rid); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Feedback or reply not found."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not delete reply."})
	}
	return c.NoContent(http.StatusNoContent)
}

// Pin sets or clears the pinned flag.
func (h *AdminFeedbackHandler) Pin(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid feedback id."})
	}
	var req pinReq
	if err := c.Bind(&req); err != nil || req.IsPinned == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": `Invalid request: "isPinned" must be a boolean.`})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Feedback.SetPinned(ctx, id, *req.IsPinned); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Feedback not found."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not update pin state."})
	}
	fb, err := h.Feedback.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not update pin state."})
	}
	return c.JSON(http.StatusOK, feedbackToView(fb, nil, nil))
}

// ChangeAvatar assigns a fresh pool avatar to a submitter and cascades it.
// For account-backed entries the user row is updated and all their feedback
// follows; for guests every entry sharing the same display name up to this
// entry's timestamp is recolored.
func (h *AdminFeedbackHandler) ChangeAvatar(c echo.Context) error {
	id, err := pathID(c, "feedbackId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid feedback id."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	fb, err := h.Feedback.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Feedback not found."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not change avatar."})
	}
	if fb.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Guest name missing for avatar generation."})
	}

	newAvatar, err := h.Avatars.PickLeastUsed(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not change avatar."})
	}
	if fb.UserID != nil {
		if err := h.Users.UpdateProfile(ctx, *fb.UserID, "", newAvatar, false); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not change avatar."})
		}
		if err := h.Feedback.CascadeAvatarByUser(ctx, *fb.UserID, newAvatar); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not change avatar."})
		}
	} else {
		if err := h.Feedback.CascadeAvatarByGuestName(ctx, fb.Name, fb.CreatedAt, newAvatar); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not change avatar."})
		}
	}

	updated, err := h.Feedback.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not change avatar."})
	}
	return c.JSON(http.StatusOK, feedbackToView(updated, nil, nil))
}

// MarkRead flags an entry as seen by the moderator.
func (h *AdminFeedbackHandler) MarkRead(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid feedback id."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Feedback.MarkRead(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Feedback not found."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not mark as read."})
	}
	fb, err := h.Feedback.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not mark as read."})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"message":  "Feedback marked as read.",
		"feedback": feedbackToView(fb, nil, nil),
	})
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
