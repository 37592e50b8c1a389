package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/feedback-board/internal/model"
)

type FeedbackRepo struct{ DB *sql.DB }

func NewFeedbackRepo(db *sql.DB) *FeedbackRepo { return &FeedbackRepo{DB: db} }

const feedbackCols = "f.id,f.user_id,f.guest_id,f.name,f.avatar_url,f.rating,f.body,f.is_pinned,f.is_edited,f.original_name,f.original_body,f.original_rating,f.original_created_at,f.ai_processed,f.read_by_admin,f.upvote_count,f.created_at"

func scanFeedback(s interface {
	Scan(dest ...any) error
}) (model.Feedback, error) {
	var f model.Feedback
	err := s.Scan(&f.ID, &f.UserID, &f.GuestID, &f.Name, &f.AvatarURL, &f.Rating,
		&f.Body, &f.IsPinned, &f.IsEdited, &f.OriginalName, &f.OriginalBody,
		&f.OriginalRating, &f.OriginalCreatedAt, &f.AIProcessed, &f.ReadByAdmin,
		&f.UpvoteCount, &f.CreatedAt)
	if err == sql.ErrNoRows {
		return f, ErrNotFound
	}
	return f, err
}

// ListQuery captures the listing parameters of the public and admin feedback
// pages.  Filter is one of "all" (default), "pinned", "replied", "unreplied".
type ListQuery struct {
	Page   int
	Limit  int
	Sort   string // "asc" | "desc"
	Filter string
	Search string
}

// Normalize clamps page/limit and defaults sort and filter; kept separate so
// the query shaping is testable without a database.
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	if q.Sort != "asc" {
		q.Sort = "desc"
	}
	switch q.Filter {
	case "pinned", "replied", "unreplied":
	default:
		q.Filter = "all"
	}
	return q
}

// whereClause builds the filter/search condition and its arguments.
func (q ListQuery) whereClause() (string, []any) {
	var conds []string
	var args []any
	switch q.Filter {
	case "pinned":
		conds = append(conds, "f.is_pinned")
	case "replied":
		conds = append(conds, "EXISTS (SELECT 1 FROM feedback_replies r WHERE r.feedback_id=f.id)")
	case "unreplied":
		conds = append(conds, "NOT EXISTS (SELECT 1 FROM feedback_replies r WHERE r.feedback_id=f.id)")
	}
	if q.Search != "" {
		like := "%" + q.Search + "%"
		conds = append(conds, "(f.name LIKE ? OR f.body LIKE ?)")
		args = append(args, like, like)
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// orderClause returns the ORDER BY for the query.  The default "all" view is
// pinned-first; filtered views use plain timestamp order.
func (q ListQuery) orderClause() string {
	dir := "DESC"
	if q.Sort == "asc" {
		dir = "ASC"
	}
	if q.Filter == "all" {
		return " ORDER BY f.is_pinned DESC, f.created_at " + dir
	}
	return " ORDER BY f.created_at " + dir
}

// Page is one page of feedback entries with the submitter verification info
// joined in for registered authors.
type Page struct {
	Items      []model.Feedback
	Submitters map[uint64]model.SubmitterInfo // keyed by feedback id
	Matched    int                            // rows matching the filter/search
	TotalPages int
	HasMore    bool
}

// List returns one page of feedback entries.
func (r *FeedbackRepo) List(ctx context.Context, q ListQuery) (Page, error) {
	q = q.Normalize()
	where, args := q.whereClause()

	var matched int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM feedback f"+where, args...).Scan(&matched); err != nil {
		return Page{}, err
	}

	query := "SELECT " + feedbackCols +
		", u.email, u.login_method, u.is_verified, u.created_at" +
		" FROM feedback f LEFT JOIN users u ON u.id=f.user_id" +
		where + q.orderClause() + " LIMIT ? OFFSET ?"
	rows, err := r.DB.QueryContext(ctx, query, append(args, q.Limit, (q.Page-1)*q.Limit)...)
	if err != nil {
		return Page{}, err
	}
	defer rows.Close()

	page := Page{Submitters: map[uint64]model.SubmitterInfo{}}
	for rows.Next() {
		var f model.Feedback
		var email, loginMethod sql.NullString
		var verified sql.NullBool
		var joined sql.NullTime
		err := rows.Scan(&f.ID, &f.UserID, &f.GuestID, &f.Name, &f.AvatarURL, &f.Rating,
			&f.Body, &f.IsPinned, &f.IsEdited, &f.OriginalName, &f.OriginalBody,
			&f.OriginalRating, &f.OriginalCreatedAt, &f.AIProcessed, &f.ReadByAdmin,
			&f.UpvoteCount, &f.CreatedAt,
			&email, &loginMethod, &verified, &joined)
		if err != nil {
			return Page{}, err
		}
		page.Items = append(page.Items, f)
		if email.Valid {
			page.Submitters[f.ID] = model.SubmitterInfo{
				Email:       email.String,
				LoginMethod: loginMethod.String,
				IsVerified:  verified.Bool,
				CreatedAt:   joined.Time,
			}
		}
	}
	if err := rows.Err(); err != nil {
		return Page{}, err
	}

	page.Matched = matched
	page.TotalPages = (matched + q.Limit - 1) / q.Limit
	if page.TotalPages == 0 {
		page.TotalPages = 1
	}
	page.HasMore = q.Page < page.TotalPages
	return page, nil
}

// Stats are the board-wide aggregates returned next to every listing page.
type Stats struct {
	TotalFeedbacks int
	AverageRating  float64
	TotalPinned    int
	TotalReplies   int
}

// GlobalStats computes the aggregates over the whole table, not just the
// current filter.
func (r *FeedbackRepo) GlobalStats(ctx context.Context) (Stats, error) {
	var s Stats
	var avg sql.NullFloat64
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*), AVG(rating), COALESCE(SUM(is_pinned),0),
		 (SELECT COUNT(*) FROM feedback_replies) FROM feedback`).
		Scan(&s.TotalFeedbacks, &avg, &s.TotalPinned, &s.TotalReplies)
	if err != nil {
		return s, err
	}
	if avg.Valid {
		s.AverageRating = avg.Float64
	}
	return s, nil
}

// Create inserts a feedback entry and returns it with the generated id and
// timestamp populated.
func (r *FeedbackRepo) Create(ctx context.Context, f model.Feedback) (model.Feedback, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO feedback (user_id,guest_id,name,avatar_url,rating,body) VALUES (?,?,?,?,?,?)",
		f.UserID, f.GuestID, f.Name, f.AvatarURL, f.Rating, f.Body)
	if err != nil {
		return f, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return f, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches one feedback entry.
func (r *FeedbackRepo) GetByID(ctx context.Context, id uint64) (model.Feedback, error) {
	return scanFeedback(r.DB.QueryRowContext(ctx,
		"SELECT "+feedbackCols+" FROM feedback f WHERE f.id=? LIMIT 1", id))
}

// LatestByGuestID returns the newest entry submitted under a guest id, used
// for avatar continuity across a guest's submissions.
func (r *FeedbackRepo) LatestByGuestID(ctx context.Context, guestID string) (model.Feedback, error) {
	return scanFeedback(r.DB.QueryRowContext(ctx,
		"SELECT "+feedbackCols+" FROM feedback f WHERE f.guest_id=? ORDER BY f.created_at DESC LIMIT 1", guestID))
}

// UpdateContent applies an owner edit.  The first edit snapshots the
// original content; the entry timestamp is refreshed so edited feedback
// resurfaces in the listing.
func (r *FeedbackRepo) UpdateContent(ctx context.Context, id uint64, name, body string, rating int, avatarURL string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE feedback SET
		 original_name=COALESCE(original_name,name),
		 original_body=COALESCE(original_body,body),
		 original_rating=COALESCE(original_rating,rating),
		 original_created_at=COALESCE(original_created_at,created_at),
		 name=?, body=?, rating=?, avatar_url=?, is_edited=TRUE, created_at=NOW()
		 WHERE id=?`,
		name, body, rating, avatarURL, id)
	return err
}

// Delete removes one entry. Votes and replies go with it via FK cascade.
func (r *FeedbackRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM feedback WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBatch removes a set of entries and returns how many existed.
func (r *FeedbackRepo) DeleteBatch(ctx context.Context, ids []uint64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	res, err := r.DB.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM feedback WHERE id IN (%s)", placeholders), args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// SetPinned updates the pin flag.
func (r *FeedbackRepo) SetPinned(ctx context.Context, id uint64, pinned bool) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE feedback SET is_pinned=? WHERE id=?", pinned, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// MarkRead flags an entry as seen by the admin.
func (r *FeedbackRepo) MarkRead(ctx context.Context, id uint64) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx, "UPDATE feedback SET read_by_admin=TRUE WHERE id=?", id)
	return err
}

// MarkAIProcessed flags an entry so the auto-responder never revisits it.
func (r *FeedbackRepo) MarkAIProcessed(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE feedback SET ai_processed=TRUE WHERE id=?", id)
	return err
}

// CascadeIdentity pushes a user's current name and avatar onto all of their
// feedback rows after a profile change.
func (r *FeedbackRepo) CascadeIdentity(ctx context.Context, userID uint64, name, avatarURL string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE feedback SET name=?, avatar_url=? WHERE user_id=?", name, avatarURL, userID)
	return err
}

// CascadeAvatarByUser rewrites the avatar on all feedback owned by a user.
func (r *FeedbackRepo) CascadeAvatarByUser(ctx context.Context, userID uint64, avatarURL string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE feedback SET avatar_url=? WHERE user_id=?", avatarURL, userID)
	return err
}

// CascadeAvatarByGuestName rewrites the avatar on guest feedback matching a
// display name, up to and including the pivot entry's timestamp.  Guest
// identity has no stable key, so this heuristic mirrors how a moderator
// thinks about "the same guest's older posts".
func (r *FeedbackRepo) CascadeAvatarByGuestName(ctx context.Context, name string, until time.Time, avatarURL string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE feedback SET avatar_url=? WHERE user_id IS NULL AND name=? AND created_at<=?",
		avatarURL, name, until)
	return err
}

// MigrateGuestIdentity links a guest's history to a freshly registered or
// logged-in account: votes move from the guest column to the user column
// (duplicates dropped) and guest feedback is re-attributed.
func (r *FeedbackRepo) MigrateGuestIdentity(ctx context.Context, guestID string, u *model.User) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// A guest vote on an entry the user also voted on would collide with the
	// unique index; those guest votes are dropped rather than doubled.
	if _, err := tx.ExecContext(ctx,
		`DELETE gv FROM feedback_votes gv
		 JOIN feedback_votes uv ON uv.feedback_id=gv.feedback_id AND uv.user_id=?
		 WHERE gv.guest_id=?`, u.ID, guestID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE feedback_votes SET user_id=?, guest_id=NULL WHERE guest_id=?",
		u.ID, guestID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE feedback SET user_id=?, guest_id=NULL, name=?, avatar_url=? WHERE guest_id=? AND user_id IS NULL",
		u.ID, u.Name, u.AvatarURL, guestID); err != nil {
		return err
	}
	// Recount affected entries; moving votes between columns cannot change
	// totals but dropped duplicates can.
	if _, err := tx.ExecContext(ctx,
		`UPDATE feedback f SET upvote_count=
		 (SELECT COUNT(*) FROM feedback_votes v WHERE v.feedback_id=f.id)
		 WHERE f.user_id=? OR EXISTS
		 (SELECT 1 FROM feedback_votes v WHERE v.feedback_id=f.id AND v.user_id=?)`,
		u.ID, u.ID); err != nil {
		return err
	}
	return tx.Commit()
}

// ListNewerThan returns entries created after the cursor, newest first; the
// admin notifications feed.
func (r *FeedbackRepo) ListNewerThan(ctx context.Context, after time.Time) ([]model.Feedback, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+feedbackCols+" FROM feedback f WHERE f.created_at>? ORDER BY f.created_at DESC", after)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Feedback
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// ListUnansweredBetween returns entries with no replies, not yet handled by
// the auto-responder, whose age falls inside [minAge, maxAge], oldest first.
func (r *FeedbackRepo) ListUnansweredBetween(ctx context.Context, minAge, maxAge time.Duration, limit int) ([]model.Feedback, error) {
	now := time.Now().UTC()
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+feedbackCols+` FROM feedback f
		 WHERE f.created_at<=? AND f.created_at>=? AND NOT f.ai_processed
		 AND NOT EXISTS (SELECT 1 FROM feedback_replies r WHERE r.feedback_id=f.id)
		 ORDER BY f.created_at ASC LIMIT ?`,
		now.Add(-minAge), now.Add(-maxAge), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Feedback
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
