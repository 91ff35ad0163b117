package store

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/expense-ledger/internal/domain"
)

func TestParseQuery_Defaults(t *testing.T) {
	q, err := ParseQuery(url.Values{})
	require.NoError(t, err)

	assert.False(t, q.Confirmed)
	assert.Nil(t, q.DateRange)
	assert.Empty(t, q.Categories)
	assert.Empty(t, q.Sort)
	assert.False(t, q.Paginate)
}

func TestParseQuery_Full(t *testing.T) {
	q, err := ParseQuery(url.Values{
		"isConfirmed": {"true"},
		"startDate":   {"2025-01-01"},
		"endDate":     {"2025-01-31T23:59:59Z"},
		"category":    {"food,travel", "rent"},
		"sort":        {"amount:desc,date"},
		"page":        {"2"},
		"pageSize":    {"25"},
	})
	require.NoError(t, err)

	assert.True(t, q.Confirmed)
	require.NotNil(t, q.DateRange)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), q.DateRange.Start)
	assert.Equal(t, time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC), q.DateRange.End)
	assert.Equal(t, []string{"food", "travel", "rent"}, q.Categories)
	assert.Equal(t, []SortKey{{Field: SortAmount, Direction: Desc}, {Field: SortDate, Direction: Asc}}, q.Sort)
	assert.True(t, q.Paginate)
	assert.Equal(t, 25, q.Offset())
}

func TestParseQuery_PaginationEscapeHatch(t *testing.T) {
	// Missing, non-numeric, or zero pagination params disable windowing
	// instead of erroring; that is the intentional no-limit behavior.
	tests := []struct {
		name string
		vals url.Values
	}{
		{name: "absent", vals: url.Values{}},
		{name: "page only", vals: url.Values{"page": {"1"}}},
		{name: "pageSize only", vals: url.Values{"pageSize": {"10"}}},
		{name: "non-numeric page", vals: url.Values{"page": {"abc"}, "pageSize": {"10"}}},
		{name: "zero pageSize", vals: url.Values{"page": {"1"}, "pageSize": {"0"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := ParseQuery(tt.vals)
			require.NoError(t, err)
			assert.False(t, q.Paginate)
		})
	}
}

func TestParseQuery_RejectsBadSortField(t *testing.T) {
	_, err := ParseQuery(url.Values{"sort": {"userId:asc"}})
	verrs, ok := domain.AsErrors(err)
	require.True(t, ok)
	require.Len(t, verrs, 1)
	assert.Equal(t, "sort", verrs[0].Field)

	_, err = ParseQuery(url.Values{"sort": {"date:sideways"}})
	_, ok = domain.AsErrors(err)
	assert.True(t, ok)
}

func TestParseQuery_RejectsBadDates(t *testing.T) {
	_, err := ParseQuery(url.Values{"startDate": {"15/01/2025"}})
	verrs, ok := domain.AsErrors(err)
	require.True(t, ok)
	assert.Equal(t, "startDate", verrs[0].Field)
}

func TestDateRangeContains(t *testing.T) {
	r := DateRange{
		Start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
	}

	assert.True(t, r.Contains(r.Start), "inclusive lower bound")
	assert.True(t, r.Contains(r.End), "inclusive upper bound")
	assert.False(t, r.Contains(r.End.Add(time.Second)))

	// Reversed range matches nothing.
	reversed := DateRange{Start: r.End, End: r.Start}
	assert.False(t, reversed.Contains(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)))
}

func TestCompare_MultiKeyAndTiebreak(t *testing.T) {
	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	a := domain.Transaction{ID: "a", Date: jan, AmountPaise: 100, Category: "food"}
	b := domain.Transaction{ID: "b", Date: jan, AmountPaise: 200, Category: "food"}
	c := domain.Transaction{ID: "c", Date: feb, AmountPaise: 100, Category: "food"}

	byDateThenAmount := []SortKey{{Field: SortDate, Direction: Asc}, {Field: SortAmount, Direction: Desc}}
	assert.Negative(t, Compare(b, a, byDateThenAmount), "same date, higher amount first")
	assert.Negative(t, Compare(a, c, byDateThenAmount), "earlier date first")

	// Full tie falls back to id for stable ordering.
	twin := domain.Transaction{ID: "z", Date: jan, AmountPaise: 100, Category: "food"}
	assert.Negative(t, Compare(a, twin, byDateThenAmount))
	assert.Positive(t, Compare(twin, a, byDateThenAmount))
}
