package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/feedback-board/internal/config"
	"github.com/iliyamo/feedback-board/internal/model"
	"github.com/iliyamo/feedback-board/internal/repository"
)

// BlogHandler serves the public blog listing and the admin CRUD routes.
type BlogHandler struct {
	Cfg   config.Config
	Blogs *repository.BlogRepo
}

type blogReq struct {
	Link    string `json:"link"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Badge   string `json:"badge"`
}

type blogView struct {
	ID        uint64    `json:"id"`
	Link      string    `json:"link"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Badge     string    `json:"badge"`
	Author    string    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
}

func blogToView(b model.Blog) blogView {
	return blogView{
		ID:        b.ID,
		Link:      b.Link,
		Title:     b.Title,
		Summary:   b.Summary,
		Badge:     b.Badge,
		Author:    b.Author,
		Timestamp: b.CreatedAt,
	}
}

// List returns every blog entry, newest first.
func (h *BlogHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	blogs, err := h.Blogs.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load blogs."})
	}
	views := make([]blogView, 0, len(blogs))
	for _, b := range blogs {
		views = append(views, blogToView(b))
	}
	return c.JSON(http.StatusOK, views)
}

// Create adds a blog entry authored by the configured admin display name.
func (h *BlogHandler) Create(c echo.Context) error {
	var req blogReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}
	if strings.TrimSpace(req.Link) == "" || strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Summary) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Missing fields."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	blog, err := h.Blogs.Create(ctx, model.Blog{
		Link:    req.Link,
		Title:   req.Title,
		Summary: req.Summary,
		Badge:   req.Badge,
		Author:  h.Cfg.AdminDisplayName,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not create blog."})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Blog created.", "blog": blogToView(blog)})
}

// Update replaces a blog entry's fields; the author is kept.
func (h *BlogHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid blog id."})
	}
	var req blogReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}
	if strings.TrimSpace(req.Link) == "" || strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Summary) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Missing fields."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	blog, err := h.Blogs.Update(ctx, model.Blog{
		ID:      id,
		Link:    req.Link,
		Title:   req.Title,
		Summary: req.Summary,
		Badge:   req.Badge,
	})
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Blog not found."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not update blog."})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Blog updated successfully.", "blog": blogToView(blog)})
}

// Delete removes a blog entry.
func (h *BlogHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid blog id."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Blogs.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Blog not found."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not delete blog."})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Blog deleted successfully."})
}
