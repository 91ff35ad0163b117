package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/expense-ledger/internal/store"
)

func TestBuildFindMany_PartitionOnly(t *testing.T) {
	sql, args, err := buildFindMany("u-1", store.Query{Confirmed: true})
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT "+selectColumns+" FROM transactions WHERE user_id = $1 AND is_confirmed = $2 ORDER BY id ASC",
		sql)
	assert.Equal(t, []any{"u-1", true}, args)
}

func TestBuildFindMany_AllFilters(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	q := store.Query{
		Confirmed:  true,
		DateRange:  &store.DateRange{Start: start, End: end},
		Categories: []string{"food", "travel"},
		Sort: []store.SortKey{
			{Field: store.SortAmount, Direction: store.Desc},
			{Field: store.SortDate, Direction: store.Asc},
		},
		Page:     2,
		PageSize: 10,
		Paginate: true,
	}

	sql, args, err := buildFindMany("u-1", q)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT "+selectColumns+" FROM transactions"+
			" WHERE user_id = $1 AND is_confirmed = $2 AND date >= $3 AND date <= $4 AND category = ANY($5)"+
			" ORDER BY amount_paise DESC, date ASC, id ASC LIMIT $6 OFFSET $7",
		sql)
	assert.Equal(t, []any{"u-1", true, start, end, []string{"food", "travel"}, 10, 10}, args)
}

func TestBuildFindMany_RejectsUnknownSortColumn(t *testing.T) {
	_, _, err := buildFindMany("u-1", store.Query{
		Sort: []store.SortKey{{Field: store.SortField("user_id"), Direction: store.Asc}},
	})
	assert.Error(t, err)
}

func TestBuildCount_SharesFilters(t *testing.T) {
	q := store.Query{Confirmed: false, Categories: []string{"rent"}}
	sql, args := buildCount("u-1", q)

	assert.Equal(t,
		"SELECT COUNT(*) FROM transactions WHERE user_id = $1 AND is_confirmed = $2 AND category = ANY($3)",
		sql)
	assert.Equal(t, []any{"u-1", false, []string{"rent"}}, args)

	// Pagination never leaks into the count.
	q.Paginate, q.Page, q.PageSize = true, 3, 20
	sql2, _ := buildCount("u-1", q)
	assert.Equal(t, sql, sql2)
}
