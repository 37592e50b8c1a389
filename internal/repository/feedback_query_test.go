package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListQueryNormalizeDefaults(t *testing.T) {
	q := ListQuery{}.Normalize()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 10, q.Limit)
	assert.Equal(t, "desc", q.Sort)
	assert.Equal(t, "all", q.Filter)
}

func TestListQueryNormalizeClamps(t *testing.T) {
	q := ListQuery{Page: -3, Limit: 5000, Sort: "sideways", Filter: "bogus"}.Normalize()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 100, q.Limit)
	assert.Equal(t, "desc", q.Sort)
	assert.Equal(t, "all", q.Filter)

	q = ListQuery{Page: 3, Limit: 25, Sort: "asc", Filter: "pinned"}.Normalize()
	assert.Equal(t, 3, q.Page)
	assert.Equal(t, 25, q.Limit)
	assert.Equal(t, "asc", q.Sort)
	assert.Equal(t, "pinned", q.Filter)
}

func TestWhereClauseFilters(t *testing.T) {
	where, args := ListQuery{Filter: "all"}.Normalize().whereClause()
	assert.Empty(t, where)
	assert.Empty(t, args)

	where, _ = ListQuery{Filter: "pinned"}.Normalize().whereClause()
	assert.Contains(t, where, "f.is_pinned")

	where, _ = ListQuery{Filter: "replied"}.Normalize().whereClause()
	assert.Contains(t, where, "EXISTS")
	assert.NotContains(t, where, "NOT EXISTS")

	where, _ = ListQuery{Filter: "unreplied"}.Normalize().whereClause()
	assert.Contains(t, where, "NOT EXISTS")
}

func TestWhereClauseSearch(t *testing.T) {
	where, args := ListQuery{Search: "great"}.Normalize().whereClause()
	assert.Contains(t, where, "f.name LIKE ?")
	assert.Contains(t, where, "f.body LIKE ?")
	assert.Equal(t, []any{"%great%", "%great%"}, args)

	where, args = ListQuery{Filter: "pinned", Search: "great"}.Normalize().whereClause()
	assert.Contains(t, where, "f.is_pinned")
	assert.Contains(t, where, " AND ")
	assert.Len(t, args, 2)
}

func TestOrderClause(t *testing.T) {
	// The default view keeps pinned entries on top regardless of direction.
	order := ListQuery{}.Normalize().orderClause()
	assert.Contains(t, order, "f.is_pinned DESC")
	assert.Contains(t, order, "f.created_at DESC")

	order = ListQuery{Sort: "asc"}.Normalize().orderClause()
	assert.Contains(t, order, "f.is_pinned DESC")
	assert.Contains(t, order, "f.created_at ASC")

	order = ListQuery{Filter: "replied", Sort: "asc"}.Normalize().orderClause()
	assert.NotContains(t, order, "is_pinned")
	assert.Contains(t, order, "f.created_at ASC")
}
