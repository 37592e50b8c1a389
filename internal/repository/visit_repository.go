package repository

import (
	"context"
	"database/sql"
	"time"
)

type VisitRepo struct{ DB *sql.DB }

func NewVisitRepo(db *sql.DB) *VisitRepo { return &VisitRepo{DB: db} }

// Record stores one page hit.
func (r *VisitRepo) Record(ctx context.Context, ip, path string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO visits (ip,path) VALUES (?,?)", ip, path)
	return err
}

// CountBetween returns the total and unique-IP visit counts in [from, to).
// Zero times mean an unbounded side.
func (r *VisitRepo) CountBetween(ctx context.Context, from, to time.Time) (total, unique int, err error) {
	where := ""
	var args []any
	switch {
	case !from.IsZero() && !to.IsZero():
		where = " WHERE created_at>=? AND created_at<?"
		args = append(args, from, to)
	case !from.IsZero():
		where = " WHERE created_at>=?"
		args = append(args, from)
	case !to.IsZero():
		where = " WHERE created_at<?"
		args = append(args, to)
	}
	err = r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*), COUNT(DISTINCT ip) FROM visits"+where, args...).Scan(&total, &unique)
	return total, unique, err
}
