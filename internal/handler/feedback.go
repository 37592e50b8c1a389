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
	"github.com/iliyamo/feedback-board/internal/model"
	"github.com/iliyamo/feedback-board/internal/queue"
	"github.com/iliyamo/feedback-board/internal/repository"
	"github.com/iliyamo/feedback-board/internal/service"
	"github.com/iliyamo/feedback-board/internal/utils"
)

// guestEditWindow is how long a guest may edit their own submission.  The
// frontend always allowed this; the server now enforces it too.
const guestEditWindow = 5 * time.Minute

// FeedbackHandler bundles dependencies for the public board endpoints.
type FeedbackHandler struct {
	Cfg      config.Config
	Feedback *repository.FeedbackRepo
	Replies  *repository.ReplyRepo
	Votes    *repository.VoteRepo
	Users    *repository.UserRepo
	Avatars  *repository.AvatarRepo
	Push     *service.PushNotifier
}

// ----- DTOs -----

type submitFeedbackReq struct {
	Name     string `json:"name"`
	GuestID  string `json:"guestId"`
	Feedback string `json:"feedback" validate:"required"`
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
}

type editFeedbackReq struct {
	Feedback string `json:"feedback" validate:"required"`
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	GuestID  string `json:"guestId"`
}

type voteReq struct {
	VoteType string `json:"voteType"`
	GuestID  string `json:"guestId"`
}

// editForbidden decides whether the caller may edit f.  A logged-in owner
// must be verified; a guest must present the matching guest id and still be
// inside the edit window.  On denial it returns the message for the 403 body
// together with repository.ErrForbidden; on success both are zero.
func editForbidden(f model.Feedback, userID uint64, isUser, verified bool, guestID string, now time.Time) (string, error) {
	if isUser {
		if f.UserID == nil || *f.UserID != userID {
			return "You can only edit your own feedbacks.", repository.ErrForbidden
		}
		if !verified {
			return "Email not verified. Please verify your email to perform this action.", repository.ErrForbidden
		}
		return "", nil
	}
	if f.GuestID == nil || guestID == "" || *f.GuestID != guestID {
		return "You can only edit your own feedbacks.", repository.ErrForbidden
	}
	if now.Sub(f.CreatedAt) > guestEditWindow {
		return "The edit window for guest feedback has closed.", repository.ErrForbidden
	}
	return "", nil
}

// List returns one page of the board plus global aggregates.
func (h *FeedbackHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	q := repository.ListQuery{
		Page:   page,
		Limit:  limit,
		Sort:   c.QueryParam("sort"),
		Filter: c.QueryParam("filter"),
		Search: c.QueryParam("q"),
	}.Normalize()

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pg, err := h.Feedback.List(ctx, q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load feedbacks."})
	}
	stats, err := h.Feedback.GlobalStats(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load feedbacks."})
	}

	ids := make([]uint64, 0, len(pg.Items))
	for _, f := range pg.Items {
		ids = append(ids, f.ID)
	}
	replies, err := h.Replies.ListFor(ctx, ids)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load feedbacks."})
	}

	views := make([]feedbackView, 0, len(pg.Items))
	for _, f := range pg.Items {
		var sub *model.SubmitterInfo
		if s, ok := pg.Submitters[f.ID]; ok {
			sub = &s
		}
		views = append(views, feedbackToView(f, replies[f.ID], sub))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"feedbacks":      views,
		"totalFeedbacks": stats.TotalFeedbacks,
		"averageRating":  fmt.Sprintf("%.1f", stats.AverageRating),
		"totalPinned":    stats.TotalPinned,
		"totalReplies":   stats.TotalReplies,
		"currentPage":    q.Page,
		"totalPages":     pg.TotalPages,
		"hasMore":        pg.HasMore,
	})
}

// Submit accepts a new feedback entry from a guest or a logged-in user.
func (h *FeedbackHandler) Submit(c echo.Context) error {
	var req submitFeedbackReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}
	req.Feedback = strings.TrimSpace(req.Feedback)
	req.Name = strings.TrimSpace(req.Name)
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Feedback and rating are required."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	f := model.Feedback{Rating: req.Rating, Body: req.Feedback}

	if uid, ok := c.Get("user_id").(uint64); ok {
		u, err := h.Users.GetByID(ctx, uid)
		if err != nil {
			if err == repository.ErrNotFound {
				return c.JSON(http.StatusNotFound, echo.Map{"message": "Authenticated user not found."})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not submit feedback."})
		}
		f.UserID = &u.ID
		f.Name = u.Name
		f.AvatarURL = u.AvatarURL
	} else {
		if req.Name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Name is required for guest feedback."})
		}
		guestID := req.GuestID
		avatar := ""
		if guestID != "" {
			// Keep the avatar the guest already appears with.
			if prev, err := h.Feedback.LatestByGuestID(ctx, guestID); err == nil {
				avatar = prev.AvatarURL
			}
		} else {
			guestID = utils.NewGuestID()
		}
		if avatar == "" {
			var err error
			avatar, err = h.Avatars.PickLeastUsed(ctx)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not submit feedback."})
			}
		} else if err := h.Avatars.IncrementUsage(ctx, avatar); err != nil {
			logrus.WithError(err).Warn("avatar usage bump failed")
		}
		f.GuestID = &guestID
		f.Name = req.Name
		f.AvatarURL = avatar
	}

	created, err := h.Feedback.Create(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not submit feedback."})
	}

	go service.PublishFeedbackEvent(context.Background(), queue.FeedbackEvent{
		Kind:       queue.KindFeedbackCreated,
		FeedbackID: created.ID,
		Name:       created.Name,
		Body:       created.Body,
		Rating:     created.Rating,
		AvatarURL:  created.AvatarURL,
		CreatedAt:  created.CreatedAt.Format(time.RFC3339),
	})
	h.Push.NotifyAdmin("New feedback received", fmt.Sprintf("%s rated %d stars", created.Name, created.Rating))

	return c.JSON(http.StatusCreated, echo.Map{
		"message":  "Your feedback has been successfully submitted!",
		"feedback": feedbackToView(created, nil, nil),
	})
}

// Edit lets the owner update their entry.  A logged-in verified owner may
// edit anytime; a guest may edit their own entry for a short window after
// submitting.
func (h *FeedbackHandler) Edit(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid feedback id."})
	}
	var req editFeedbackReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}
	req.Feedback = strings.TrimSpace(req.Feedback)
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Feedback and rating are required for update!"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	existing, err := h.Feedback.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "This feedback ID was not found."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not update feedback."})
	}

	name := existing.Name
	avatar := existing.AvatarURL

	uid, isUser := c.Get("user_id").(uint64)
	verified, _ := c.Get("user_verified").(bool)
	if msg, err := editForbidden(existing, uid, isUser, verified, req.GuestID, time.Now().UTC()); err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"message": msg})
	}
	if isUser {
		u, err := h.Users.GetByID(ctx, uid)
		if err != nil {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User attempting to edit feedback not found."})
		}
		name = u.Name
		avatar = u.AvatarURL
	}

	if existing.Body != req.Feedback || existing.Rating != req.Rating {
		if err := h.Feedback.UpdateContent(ctx, id, name, req.Feedback, req.Rating, avatar); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not update feedback."})
		}
	}
	updated, err := h.Feedback.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not update feedback."})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Your feedback has been updated!",
		"feedback": feedbackToView(updated, nil, nil),
	})
}

// Vote toggles an upvote for a user or a guest.
func (h *FeedbackHandler) Vote(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid feedback id."})
	}
	var req voteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}
	if req.VoteType != "upvote" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": `Invalid vote type. Only "upvote" is supported.`})
	}

	var voter repository.Voter
	if uid, ok := c.Get("user_id").(uint64); ok {
		voter.UserID = &uid
	} else {
		if req.GuestID == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Authentication required or provide a unique guest identifier."})
		}
		voter.GuestID = &req.GuestID
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Feedback.GetByID(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Feedback not found."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not register vote."})
	}

	voted, count, err := h.Votes.Toggle(ctx, id, voter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not register vote."})
	}

	go service.PublishFeedbackEvent(context.Background(), queue.FeedbackEvent{
		Kind:        queue.KindVoteUpdated,
		FeedbackID:  id,
		UpvoteCount: count,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	})

	msg := "Upvoted successfully."
	if !voted {
		msg = "Upvote removed."
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":     msg,
		"upvoteCount": count,
		"hasUpvoted":  voted,
	})
}
