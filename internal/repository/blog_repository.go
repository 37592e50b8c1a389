package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/feedback-board/internal/model"
)

type BlogRepo struct{ DB *sql.DB }

func NewBlogRepo(db *sql.DB) *BlogRepo { return &BlogRepo{DB: db} }

// Create inserts a blog entry and returns it.
func (r *BlogRepo) Create(ctx context.Context, b model.Blog) (model.Blog, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO blogs (link,title,summary,badge,author) VALUES (?,?,?,?,?)",
		b.Link, b.Title, b.Summary, b.Badge, b.Author)
	if err != nil {
		return b, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return b, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches one blog entry.
func (r *BlogRepo) GetByID(ctx context.Context, id uint64) (model.Blog, error) {
	var b model.Blog
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,link,title,summary,badge,author,created_at FROM blogs WHERE id=? LIMIT 1", id).
		Scan(&b.ID, &b.Link, &b.Title, &b.Summary, &b.Badge, &b.Author, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return b, ErrNotFound
	}
	return b, err
}

// List returns all blog entries, newest first.
func (r *BlogRepo) List(ctx context.Context) ([]model.Blog, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,link,title,summary,badge,author,created_at FROM blogs ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Blog
	for rows.Next() {
		var b model.Blog
		if err := rows.Scan(&b.ID, &b.Link, &b.Title, &b.Summary, &b.Badge, &b.Author, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Update replaces a blog entry's fields.
func (r *BlogRepo) Update(ctx context.Context, b model.Blog) (model.Blog, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE blogs SET link=?, title=?, summary=?, badge=? WHERE id=?",
		b.Link, b.Title, b.Summary, b.Badge, b.ID)
	if err != nil {
		return b, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, b.ID); err != nil {
			return b, err
		}
	}
	return r.GetByID(ctx, b.ID)
}

// Delete removes a blog entry.
func (r *BlogRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM blogs WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
