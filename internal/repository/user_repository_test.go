package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetResetTokenIssuesToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := &UserRepo{DB: db}

	mock.ExpectExec("UPDATE users SET reset_token=").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), 7, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	token, err := repo.SetResetToken(context.Background(), 7, time.Hour, 5*time.Minute)
	require.NoError(t, err)
	assert.Len(t, token, 64)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// While the previous link is fresh the guarded update leaves the row alone,
// so repeated requests are throttled instead of rotating the token.
func TestSetResetTokenRefusesFreshToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := &UserRepo{DB: db}

	mock.ExpectExec("UPDATE users SET reset_token=").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), 7, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	token, err := repo.SetResetToken(context.Background(), 7, time.Hour, 5*time.Minute)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Empty(t, token)
	assert.NoError(t, mock.ExpectationsWereMet())
}
