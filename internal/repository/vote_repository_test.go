package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func voteRepo(t *testing.T) (*VoteRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &VoteRepo{DB: db}, mock
}

func TestToggleAddsVote(t *testing.T) {
	repo, mock := voteRepo(t)
	uid := uint64(7)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM feedback_votes WHERE feedback_id=. AND user_id=").
		WithArgs(1, 7).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO feedback_votes").
		WithArgs(1, 7, nil).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec("UPDATE feedback SET upvote_count=").
		WithArgs(1, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT upvote_count FROM feedback WHERE id=").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"upvote_count"}).AddRow(3))
	mock.ExpectCommit()

	voted, count, err := repo.Toggle(context.Background(), 1, Voter{UserID: &uid})
	require.NoError(t, err)
	assert.True(t, voted)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleRemovesExistingVote(t *testing.T) {
	repo, mock := voteRepo(t)
	gid := "guest-abc123"

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM feedback_votes WHERE feedback_id=. AND guest_id=").
		WithArgs(1, gid).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE feedback SET upvote_count=").
		WithArgs(1, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT upvote_count FROM feedback WHERE id=").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"upvote_count"}).AddRow(2))
	mock.ExpectCommit()

	voted, count, err := repo.Toggle(context.Background(), 1, Voter{GuestID: &gid})
	require.NoError(t, err)
	assert.False(t, voted)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A concurrent identical vote wins the unique-index race; the losing insert
// reports the state the winner produced instead of failing the request.
func TestToggleLostInsertRace(t *testing.T) {
	repo, mock := voteRepo(t)
	uid := uint64(7)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM feedback_votes WHERE feedback_id=. AND user_id=").
		WithArgs(1, 7).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO feedback_votes").
		WithArgs(1, 7, nil).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry '1-7' for key 'feedback_votes.uq_vote_user'"))
	mock.ExpectRollback()
	mock.ExpectQuery("SELECT upvote_count FROM feedback WHERE id=").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"upvote_count"}).AddRow(5))

	voted, count, err := repo.Toggle(context.Background(), 1, Voter{UserID: &uid})
	require.NoError(t, err)
	assert.True(t, voted)
	assert.Equal(t, 5, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
