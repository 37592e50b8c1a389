package repository

import (
	"context"
	"database/sql"
	"strings"
)

type VoteRepo struct{ DB *sql.DB }

func NewVoteRepo(db *sql.DB) *VoteRepo { return &VoteRepo{DB: db} }

// Voter identifies who is voting: a registered user or a guest.  Exactly one
// field is set.
type Voter struct {
	UserID  *uint64
	GuestID *string
}

// Toggle adds the voter's upvote if absent, removes it if present, and keeps
// the denormalized count in sync.  It returns whether the vote is now set
// and the new count.  The whole operation runs in one transaction; the
// unique indexes on feedback_votes make a concurrent duplicate insert fail
// instead of double-counting, in which case the attempt is treated as a
// no-op toggle-off already applied by the racing request.
func (r *VoteRepo) Toggle(ctx context.Context, feedbackID uint64, v Voter) (voted bool, count int, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, 0, err
	}
	defer tx.Rollback()

	var del sql.Result
	if v.UserID != nil {
		del, err = tx.ExecContext(ctx,
			"DELETE FROM feedback_votes WHERE feedback_id=? AND user_id=?", feedbackID, *v.UserID)
	} else {
		del, err = tx.ExecContext(ctx,
			"DELETE FROM feedback_votes WHERE feedback_id=? AND guest_id=?", feedbackID, *v.GuestID)
	}
	if err != nil {
		return false, 0, err
	}

	removed, _ := del.RowsAffected()
	if removed == 0 {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO feedback_votes (feedback_id,user_id,guest_id) VALUES (?,?,?)",
			feedbackID, v.UserID, v.GuestID)
		if err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "1062") {
				// Lost a race against an identical vote; report the state the
				// winning request produced.
				_ = tx.Rollback()
				err = r.DB.QueryRowContext(ctx,
					"SELECT upvote_count FROM feedback WHERE id=?", feedbackID).Scan(&count)
				return true, count, err
			}
			return false, 0, err
		}
		voted = true
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE feedback SET upvote_count=
		 (SELECT COUNT(*) FROM feedback_votes WHERE feedback_id=?) WHERE id=?`,
		feedbackID, feedbackID); err != nil {
		return false, 0, err
	}
	if err := tx.QueryRowContext(ctx,
		"SELECT upvote_count FROM feedback WHERE id=?", feedbackID).Scan(&count); err != nil {
		return false, 0, err
	}
	return voted, count, tx.Commit()
}
