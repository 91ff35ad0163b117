// Package store defines the reconciliation store contract: the two-partition
// (unconfirmed/confirmed) transaction persistence every other component
// writes through, plus the query model the partitions are read with.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/expense-ledger/internal/domain"
)

// ErrNotFound reports that no transaction matched the given id for the
// given owning user.
var ErrNotFound = errors.New("transaction not found")

// ErrStorage wraps infrastructure failures of the underlying persistence.
// Callers surface it as an opaque retry-later condition.
var ErrStorage = errors.New("storage unavailable")

// Store is the per-user transaction store. Every method is scoped by the
// owning userID; cross-user access is impossible by construction.
type Store interface {
	// Insert validates the draft, assigns id and timestamps, and persists
	// the record. Returns domain.Errors on a malformed draft.
	Insert(ctx context.Context, userID string, draft domain.Draft) (domain.Transaction, error)

	// BulkInsert applies Insert semantics to each draft in order, all or
	// nothing: one invalid draft aborts the whole batch and the error
	// identifies the offending candidate by index.
	BulkInsert(ctx context.Context, userID string, drafts []domain.Draft) ([]domain.Transaction, error)

	// FindByID returns the transaction or ErrNotFound.
	FindByID(ctx context.Context, userID, id string) (domain.Transaction, error)

	// FindMany returns the rows matching the query plus the total match
	// count before pagination.
	FindMany(ctx context.Context, userID string, q Query) ([]domain.Transaction, int, error)

	// Update merges the patch into the stored record, re-validates the
	// result, bumps UpdatedAt and persists. ErrNotFound when id+user miss.
	Update(ctx context.Context, userID, id string, patch domain.Patch) (domain.Transaction, error)

	// Delete hard-deletes the row, returning how many rows went away
	// (0 or 1). Callers treat 0 as not found.
	Delete(ctx context.Context, userID, id string) (int64, error)

	// DistinctCategories returns the deduplicated set of category labels
	// the user has ever used, in unspecified order.
	DistinctCategories(ctx context.Context, userID string) ([]string, error)
}

// BulkValidationError identifies which candidate of a batch failed
// validation and why. The batch is never partially persisted.
type BulkValidationError struct {
	Index  int
	Errors domain.Errors
}

func (e *BulkValidationError) Error() string {
	return fmt.Sprintf("transaction %d: %s", e.Index, e.Errors.Error())
}

func (e *BulkValidationError) Unwrap() error { return e.Errors }
