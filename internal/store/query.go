package store

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/expense-ledger/internal/domain"
)

// SortField is a whitelisted sortable column.
type SortField string

const (
	SortDate        SortField = "date"
	SortAmount      SortField = "amount"
	SortCategory    SortField = "category"
	SortDescription SortField = "description"
)

// Direction of one sort key.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// SortKey is one (field, direction) pair of a multi-key sort.
type SortKey struct {
	Field     SortField
	Direction Direction
}

// DateRange is an inclusive [Start, End] filter on the transaction date,
// both bounds UTC. A reversed range matches nothing; it is not an error.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the inclusive range.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Query describes one read against a single confirmation partition.
type Query struct {
	// Confirmed selects the partition; the two partitions are never
	// queried together.
	Confirmed bool

	DateRange  *DateRange
	Categories []string
	Sort       []SortKey

	// Page is 1-indexed. When Paginate is false the whole match set is
	// returned; that is the intentional no-limit escape hatch.
	Page     int
	PageSize int
	Paginate bool
}

// Offset of the first row of the requested page.
func (q Query) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// MatchesCategory applies the OR-set category filter; an absent or empty
// set filters nothing.
func (q Query) MatchesCategory(category string) bool {
	if len(q.Categories) == 0 {
		return true
	}
	for _, c := range q.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Compare orders a before b according to the query's sort keys, ties
// broken by the next key. Rows equal under every key fall back to id so
// that repeated identical queries return a stable order.
func Compare(a, b domain.Transaction, keys []SortKey) int {
	for _, k := range keys {
		var c int
		switch k.Field {
		case SortDate:
			switch {
			case a.Date.Before(b.Date):
				c = -1
			case a.Date.After(b.Date):
				c = 1
			}
		case SortAmount:
			switch {
			case a.AmountPaise < b.AmountPaise:
				c = -1
			case a.AmountPaise > b.AmountPaise:
				c = 1
			}
		case SortCategory:
			c = strings.Compare(a.Category, b.Category)
		case SortDescription:
			c = strings.Compare(a.Description, b.Description)
		}
		if c == 0 {
			continue
		}
		if k.Direction == Desc {
			c = -c
		}
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

// ParseQuery turns raw HTTP query parameters into a typed Query, applying
// the defaulting rules of the read path: unknown sort fields are rejected,
// but missing or malformed pagination falls back to "return everything"
// rather than failing.
//
// Recognized parameters:
//
//	isConfirmed  "true" selects the confirmed partition, anything else the
//	             unconfirmed one
//	startDate    RFC3339 or YYYY-MM-DD, inclusive lower bound
//	endDate      RFC3339 or YYYY-MM-DD, inclusive upper bound
//	category     repeatable and/or comma-separated set of labels
//	sort         comma-separated "field:asc|desc" pairs, highest priority first
//	page         1-indexed page number
//	pageSize     rows per page; 0 or absent disables pagination
func ParseQuery(vals url.Values) (Query, error) {
	q := Query{Confirmed: vals.Get("isConfirmed") == "true"}

	startStr, endStr := vals.Get("startDate"), vals.Get("endDate")
	if startStr != "" || endStr != "" {
		r := DateRange{Start: time.Time{}, End: maxDate}
		if startStr != "" {
			t, ok := parseQueryDate(startStr)
			if !ok {
				return Query{}, domain.Errors{{Field: "startDate", Code: domain.CodeInvalidDate, Reason: "invalid date format: " + startStr}}
			}
			r.Start = t
		}
		if endStr != "" {
			t, ok := parseQueryDate(endStr)
			if !ok {
				return Query{}, domain.Errors{{Field: "endDate", Code: domain.CodeInvalidDate, Reason: "invalid date format: " + endStr}}
			}
			r.End = t
		}
		q.DateRange = &r
	}

	for _, raw := range vals["category"] {
		for _, c := range strings.Split(raw, ",") {
			if c = strings.TrimSpace(c); c != "" {
				q.Categories = append(q.Categories, c)
			}
		}
	}

	if sortStr := vals.Get("sort"); sortStr != "" {
		keys, err := ParseSort(sortStr)
		if err != nil {
			return Query{}, err
		}
		q.Sort = keys
	}

	page, pageOK := parsePositiveInt(vals.Get("page"))
	size, sizeOK := parsePositiveInt(vals.Get("pageSize"))
	if pageOK && sizeOK {
		q.Page, q.PageSize, q.Paginate = page, size, true
	}

	return q, nil
}

// ParseSort parses "date:desc,amount" into sort keys; direction defaults
// to ascending. Fields outside the whitelist are rejected.
func ParseSort(s string) ([]SortKey, error) {
	var keys []SortKey
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		field, dir, _ := strings.Cut(part, ":")
		key := SortKey{Direction: Asc}
		switch SortField(strings.ToLower(field)) {
		case SortDate, SortAmount, SortCategory, SortDescription:
			key.Field = SortField(strings.ToLower(field))
		default:
			return nil, domain.Errors{{Field: "sort", Code: "InvalidSortField", Reason: "unsupported sort field: " + field}}
		}
		switch strings.ToUpper(strings.TrimSpace(dir)) {
		case "", string(Asc):
		case string(Desc):
			key.Direction = Desc
		default:
			return nil, domain.Errors{{Field: "sort", Code: "InvalidSortDirection", Reason: "unsupported sort direction: " + dir}}
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// maxDate stands in for a missing upper bound.
var maxDate = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)

func parseQueryDate(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// parsePositiveInt returns ok only for a parseable value >= 1, which is
// what the pagination escape hatch keys off.
func parsePositiveInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
