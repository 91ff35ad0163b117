package postgres

import (
	"fmt"
	"strings"

	"github.com/dvloznov/expense-ledger/internal/store"
)

const selectColumns = "id, user_id, date, amount_paise, category, description, is_confirmed, created_at, updated_at"

// sortColumns maps whitelisted sort fields to table columns. ParseQuery
// already rejected anything else, but the builder re-checks so a
// hand-built Query cannot smuggle identifiers into ORDER BY.
var sortColumns = map[store.SortField]string{
	store.SortDate:        "date",
	store.SortAmount:      "amount_paise",
	store.SortCategory:    "category",
	store.SortDescription: "description",
}

// buildWhere renders the filter clauses shared by the row query and the
// count query, with positional args starting at $1.
func buildWhere(userID string, q store.Query) (string, []any) {
	clauses := []string{"user_id = $1", "is_confirmed = $2"}
	args := []any{userID, q.Confirmed}

	if q.DateRange != nil {
		args = append(args, q.DateRange.Start, q.DateRange.End)
		clauses = append(clauses, fmt.Sprintf("date >= $%d AND date <= $%d", len(args)-1, len(args)))
	}
	if len(q.Categories) > 0 {
		args = append(args, q.Categories)
		clauses = append(clauses, fmt.Sprintf("category = ANY($%d)", len(args)))
	}

	return strings.Join(clauses, " AND "), args
}

// buildFindMany renders the windowed row query for FindMany.
func buildFindMany(userID string, q store.Query) (string, []any, error) {
	where, args := buildWhere(userID, q)

	var order []string
	for _, k := range q.Sort {
		col, ok := sortColumns[k.Field]
		if !ok {
			return "", nil, fmt.Errorf("unsupported sort field %q", k.Field)
		}
		dir := "ASC"
		if k.Direction == store.Desc {
			dir = "DESC"
		}
		order = append(order, col+" "+dir)
	}
	// id tiebreak keeps equal-key rows stable across identical queries.
	order = append(order, "id ASC")

	sql := fmt.Sprintf("SELECT %s FROM transactions WHERE %s ORDER BY %s",
		selectColumns, where, strings.Join(order, ", "))

	if q.Paginate {
		args = append(args, q.PageSize, q.Offset())
		sql += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	return sql, args, nil
}

// buildCount renders the pre-pagination total for the same filters.
func buildCount(userID string, q store.Query) (string, []any) {
	where, args := buildWhere(userID, q)
	return "SELECT COUNT(*) FROM transactions WHERE " + where, args
}
