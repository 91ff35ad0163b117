// Package memory is the reference Store implementation: a mutex-guarded
// in-process map. Data is lost on restart; it backs tests and local
// development, with the postgres package carrying production traffic.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dvloznov/expense-ledger/internal/domain"
	"github.com/dvloznov/expense-ledger/internal/store"
)

// Store holds every user's transactions keyed by transaction id.
// Safe for concurrent use; values are copied on the way in and out.
type Store struct {
	mu  sync.RWMutex
	txs map[string]domain.Transaction

	// now is swappable so tests can pin timestamps.
	now func() time.Time
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		txs: make(map[string]domain.Transaction),
		now: time.Now,
	}
}

// Insert implements store.Store.
func (s *Store) Insert(ctx context.Context, userID string, draft domain.Draft) (domain.Transaction, error) {
	tx, errs := draft.Validate()
	if errs != nil {
		return domain.Transaction{}, errs
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked(userID, tx), nil
}

// BulkInsert implements store.Store. Every draft is validated before any
// row is written, so one bad candidate leaves the store untouched.
func (s *Store) BulkInsert(ctx context.Context, userID string, drafts []domain.Draft) ([]domain.Transaction, error) {
	validated := make([]domain.Transaction, 0, len(drafts))
	for i, draft := range drafts {
		tx, errs := draft.Validate()
		if errs != nil {
			return nil, &store.BulkValidationError{Index: i, Errors: errs}
		}
		validated = append(validated, tx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Transaction, 0, len(validated))
	for _, tx := range validated {
		out = append(out, s.persistLocked(userID, tx))
	}
	return out, nil
}

// FindByID implements store.Store.
func (s *Store) FindByID(ctx context.Context, userID, id string) (domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.txs[id]
	if !ok || tx.UserID != userID {
		return domain.Transaction{}, store.ErrNotFound
	}
	return tx, nil
}

// FindMany implements store.Store: filter, stable multi-key sort, then
// window. The total is counted before pagination.
func (s *Store) FindMany(ctx context.Context, userID string, q store.Query) ([]domain.Transaction, int, error) {
	s.mu.RLock()
	matched := make([]domain.Transaction, 0)
	for _, tx := range s.txs {
		if tx.UserID != userID || tx.IsConfirmed != q.Confirmed {
			continue
		}
		if q.DateRange != nil && !q.DateRange.Contains(tx.Date) {
			continue
		}
		if !q.MatchesCategory(tx.Category) {
			continue
		}
		matched = append(matched, tx)
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return store.Compare(matched[i], matched[j], q.Sort) < 0
	})

	total := len(matched)
	if !q.Paginate {
		return matched, total, nil
	}

	lo := q.Offset()
	if lo >= total {
		return []domain.Transaction{}, total, nil
	}
	hi := lo + q.PageSize
	if hi > total {
		hi = total
	}
	return matched[lo:hi], total, nil
}

// Update implements store.Store.
func (s *Store) Update(ctx context.Context, userID, id string, patch domain.Patch) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.txs[id]
	if !ok || current.UserID != userID {
		return domain.Transaction{}, store.ErrNotFound
	}

	merged := patch.Apply(current)
	if errs := merged.Validate(); errs != nil {
		return domain.Transaction{}, errs
	}

	merged.UpdatedAt = s.now().UTC()
	s.txs[id] = merged
	return merged, nil
}

// Delete implements store.Store.
func (s *Store) Delete(ctx context.Context, userID, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.txs[id]
	if !ok || tx.UserID != userID {
		return 0, nil
	}
	delete(s.txs, id)
	return 1, nil
}

// DistinctCategories implements store.Store.
func (s *Store) DistinctCategories(ctx context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for _, tx := range s.txs {
		if tx.UserID != userID || seen[tx.Category] {
			continue
		}
		seen[tx.Category] = true
		out = append(out, tx.Category)
	}
	return out, nil
}

// persistLocked assigns identity and timestamps and stores the record.
// Caller holds the write lock.
func (s *Store) persistLocked(userID string, tx domain.Transaction) domain.Transaction {
	now := s.now().UTC()
	tx.ID = uuid.NewString()
	tx.UserID = userID
	tx.CreatedAt = now
	tx.UpdatedAt = now
	s.txs[tx.ID] = tx
	return tx
}
