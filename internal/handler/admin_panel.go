package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/feedback-board/internal/repository"
)

// AdminPanelHandler serves the moderation console's notification feed and
// the visit analytics widget.
type AdminPanelHandler struct {
	Admins   *repository.AdminRepo
	Feedback *repository.FeedbackRepo
	Visits   *repository.VisitRepo
}

type notificationView struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Feedback  string    `json:"feedback"`
	AvatarURL string    `json:"avatarUrl"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifications lists feedback submitted since the admin last opened the
// console, newest first.
func (h *AdminPanelHandler) Notifications(c echo.Context) error {
	adminID, _ := c.Get("admin_id").(uint64)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	since, err := h.Admins.LastSeenFeedbackAt(ctx, adminID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load notifications."})
	}
	items, err := h.Feedback.ListNewerThan(ctx, since)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load notifications."})
	}

	views := make([]notificationView, 0, len(items))
	for _, f := range items {
		views = append(views, notificationView{
			ID:        f.ID,
			Name:      f.Name,
			Feedback:  f.Body,
			AvatarURL: f.AvatarURL,
			Timestamp: f.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"notifications": views, "lastSeen": since})
}

// MarkSeen advances the admin's notification cursor to now.
func (h *AdminPanelHandler) MarkSeen(c echo.Context) error {
	adminID, _ := c.Get("admin_id").(uint64)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ts, err := h.Admins.MarkSeen(ctx, adminID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not mark notifications as seen."})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Notifications marked as seen.", "timestamp": ts})
}

// Analytics reports total and unique site visits for a named period.
func (h *AdminPanelHandler) Analytics(c echo.Context) error {
	period := c.QueryParam("period")
	if period == "" {
		period = "all"
	}

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var from, to time.Time
	switch period {
	case "all":
		to = now
	case "today":
		from, to = startOfDay, now
	case "yesterday":
		from, to = startOfDay.AddDate(0, 0, -1), startOfDay
	case "last7days":
		from, to = startOfDay.AddDate(0, 0, -6), now
	case "last30days":
		from, to = startOfDay.AddDate(0, 0, -29), now
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid period."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	total, unique, err := h.Visits.CountBetween(ctx, from, to)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load analytics."})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"period":       period,
		"totalVisits":  total,
		"uniqueVisits": unique,
	})
}
