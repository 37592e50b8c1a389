package repository

import (
	"context"
	"database/sql"
	"math/rand"
)

// AvatarRepo implements the least-used avatar assignment policy over the
// avatar_usage table.  The pool itself is configuration; the table only
// records how often each URL has been handed out.
type AvatarRepo struct {
	DB   *sql.DB
	Pool []string
}

func NewAvatarRepo(db *sql.DB, pool []string) *AvatarRepo {
	return &AvatarRepo{DB: db, Pool: pool}
}

// PickLeastUsed selects an avatar for a new user or guest: any pool URL with
// no recorded use wins first (random among them), otherwise a random member
// of the current minimum-usage set.  The winner's counter is incremented
// before returning.
func (r *AvatarRepo) PickLeastUsed(ctx context.Context) (string, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT url, usage_count FROM avatar_usage ORDER BY usage_count ASC LIMIT ?", len(r.Pool))
	if err != nil {
		return "", err
	}
	defer rows.Close()

	used := map[string]bool{}
	type entry struct {
		url   string
		count int
	}
	var least []entry
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.url, &e.count); err != nil {
			return "", err
		}
		used[e.url] = true
		least = append(least, e)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	var unused []string
	for _, u := range r.Pool {
		if !used[u] {
			unused = append(unused, u)
		}
	}
	var pick string
	switch {
	case len(unused) > 0:
		pick = unused[rand.Intn(len(unused))]
	case len(least) > 0:
		minCount := least[0].count
		var candidates []string
		for _, e := range least {
			if e.count == minCount {
				candidates = append(candidates, e.url)
			}
		}
		pick = candidates[rand.Intn(len(candidates))]
	case len(r.Pool) > 0:
		pick = r.Pool[rand.Intn(len(r.Pool))]
	default:
		return "", ErrNotFound
	}
	if err := r.IncrementUsage(ctx, pick); err != nil {
		return "", err
	}
	return pick, nil
}

// IncrementUsage bumps the counter for a URL, creating the row on first use.
// Also called when a user picks a pool avatar manually, so manual choices
// count toward the balancing.
func (r *AvatarRepo) IncrementUsage(ctx context.Context, url string) error {
	if url == "" {
		return nil
	}
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO avatar_usage (url,usage_count) VALUES (?,1)
		 ON DUPLICATE KEY UPDATE usage_count=usage_count+1`, url)
	return err
}
