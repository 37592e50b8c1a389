package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/iliyamo/feedback-board/internal/model"
)

type ReplyRepo struct{ DB *sql.DB }

func NewReplyRepo(db *sql.DB) *ReplyRepo { return &ReplyRepo{DB: db} }

// Add appends a reply to a feedback entry's thread.
func (r *ReplyRepo) Add(ctx context.Context, feedbackID uint64, adminName, body string) (model.Reply, error) {
	var reply model.Reply
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO feedback_replies (feedback_id,admin_name,body) VALUES (?,?,?)",
		feedbackID, adminName, body)
	if err != nil {
		return reply, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return reply, err
	}
	err = r.DB.QueryRowContext(ctx,
		"SELECT id,feedback_id,admin_name,body,created_at FROM feedback_replies WHERE id=?", id).
		Scan(&reply.ID, &reply.FeedbackID, &reply.AdminName, &reply.Body, &reply.CreatedAt)
	return reply, err
}

// Update edits a reply's text and refreshes its timestamp.  The stored
// admin name is retained.
func (r *ReplyRepo) Update(ctx context.Context, feedbackID, replyID uint64, body string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE feedback_replies SET body=?, created_at=NOW() WHERE id=? AND feedback_id=?",
		body, replyID, feedbackID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a reply from a thread.
func (r *ReplyRepo) Delete(ctx context.Context, feedbackID, replyID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM feedback_replies WHERE id=? AND feedback_id=?", replyID, feedbackID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountFor returns the number of replies on one entry.
func (r *ReplyRepo) CountFor(ctx context.Context, feedbackID uint64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM feedback_replies WHERE feedback_id=?", feedbackID).Scan(&n)
	return n, err
}

// ListFor fetches the threads of a set of feedback entries in one query,
// oldest reply first, keyed by feedback id.
func (r *ReplyRepo) ListFor(ctx context.Context, feedbackIDs []uint64) (map[uint64][]model.Reply, error) {
	out := map[uint64][]model.Reply{}
	if len(feedbackIDs) == 0 {
		return out, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(feedbackIDs)), ",")
	args := make([]any, len(feedbackIDs))
	for i, id := range feedbackIDs {
		args[i] = id
	}
	rows, err := r.DB.QueryContext(ctx,
		fmt.Sprintf("SELECT id,feedback_id,admin_name,body,created_at FROM feedback_replies WHERE feedback_id IN (%s) ORDER BY created_at ASC", placeholders),
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var rep model.Reply
		if err := rows.Scan(&rep.ID, &rep.FeedbackID, &rep.AdminName, &rep.Body, &rep.CreatedAt); err != nil {
			return nil, err
		}
		out[rep.FeedbackID] = append(out[rep.FeedbackID], rep)
	}
	return out, rows.Err()
}

// RecentHumanReplies returns the newest replies not authored by the
// auto-responder, used as tone context for generated replies.
func (r *ReplyRepo) RecentHumanReplies(ctx context.Context, botName string, limit int) ([]model.Reply, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,feedback_id,admin_name,body,created_at FROM feedback_replies WHERE admin_name<>? ORDER BY created_at DESC LIMIT ?",
		botName, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Reply
	for rows.Next() {
		var rep model.Reply
		if err := rows.Scan(&rep.ID, &rep.FeedbackID, &rep.AdminName, &rep.Body, &rep.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}
