// Package postgres is the production Store implementation on pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dvloznov/expense-ledger/internal/domain"
	"github.com/dvloznov/expense-ledger/internal/money"
	"github.com/dvloznov/expense-ledger/internal/store"
)

// Store runs every operation against a pgx connection pool. Validation
// happens in Go before any SQL is sent; the database only ever sees
// well-formed records.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an established pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Connect dials postgres and returns a ready store.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}

const insertSQL = `
	INSERT INTO transactions (id, user_id, date, amount_paise, category, description, is_confirmed, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

// Insert implements store.Store.
func (s *Store) Insert(ctx context.Context, userID string, draft domain.Draft) (domain.Transaction, error) {
	tx, errs := draft.Validate()
	if errs != nil {
		return domain.Transaction{}, errs
	}

	tx = stamp(tx, userID)
	if _, err := s.pool.Exec(ctx, insertSQL, insertArgs(tx)...); err != nil {
		return domain.Transaction{}, storageErr("insert transaction", err)
	}
	return tx, nil
}

// BulkInsert implements store.Store. All drafts are validated up front and
// the writes share one database transaction, so a failure anywhere leaves
// zero rows behind.
func (s *Store) BulkInsert(ctx context.Context, userID string, drafts []domain.Draft) ([]domain.Transaction, error) {
	validated := make([]domain.Transaction, 0, len(drafts))
	for i, draft := range drafts {
		tx, errs := draft.Validate()
		if errs != nil {
			return nil, &store.BulkValidationError{Index: i, Errors: errs}
		}
		validated = append(validated, tx)
	}

	dbTx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, storageErr("begin bulk insert", err)
	}
	defer dbTx.Rollback(ctx)

	out := make([]domain.Transaction, 0, len(validated))
	for _, tx := range validated {
		tx = stamp(tx, userID)
		if _, err := dbTx.Exec(ctx, insertSQL, insertArgs(tx)...); err != nil {
			return nil, storageErr("bulk insert transaction", err)
		}
		out = append(out, tx)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, storageErr("commit bulk insert", err)
	}
	return out, nil
}

// FindByID implements store.Store.
func (s *Store) FindByID(ctx context.Context, userID, id string) (domain.Transaction, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+selectColumns+" FROM transactions WHERE id = $1 AND user_id = $2", id, userID)

	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Transaction{}, store.ErrNotFound
		}
		return domain.Transaction{}, storageErr("find transaction", err)
	}
	return tx, nil
}

// FindMany implements store.Store. The window and the count read from the
// same database transaction so totalCount always agrees with the rows.
func (s *Store) FindMany(ctx context.Context, userID string, q store.Query) ([]domain.Transaction, int, error) {
	sql, args, err := buildFindMany(userID, q)
	if err != nil {
		return nil, 0, err
	}

	dbTx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, 0, storageErr("begin query", err)
	}
	defer dbTx.Rollback(ctx)

	rows, err := dbTx.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, storageErr("query transactions", err)
	}
	defer rows.Close()

	out := make([]domain.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, storageErr("scan transaction", err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, storageErr("iterate transactions", err)
	}
	rows.Close()

	countSQL, countArgs := buildCount(userID, q)
	var total int
	if err := dbTx.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, storageErr("count transactions", err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, 0, storageErr("commit query", err)
	}
	return out, total, nil
}

// Update implements store.Store: read, merge, re-validate, write, all in
// one database transaction.
func (s *Store) Update(ctx context.Context, userID, id string, patch domain.Patch) (domain.Transaction, error) {
	dbTx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Transaction{}, storageErr("begin update", err)
	}
	defer dbTx.Rollback(ctx)

	row := dbTx.QueryRow(ctx,
		"SELECT "+selectColumns+" FROM transactions WHERE id = $1 AND user_id = $2 FOR UPDATE", id, userID)
	current, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Transaction{}, store.ErrNotFound
		}
		return domain.Transaction{}, storageErr("read transaction for update", err)
	}

	merged := patch.Apply(current)
	if errs := merged.Validate(); errs != nil {
		return domain.Transaction{}, errs
	}
	merged.UpdatedAt = time.Now().UTC()

	_, err = dbTx.Exec(ctx, `
		UPDATE transactions
		SET date = $1, amount_paise = $2, category = $3, description = $4, is_confirmed = $5, updated_at = $6
		WHERE id = $7 AND user_id = $8`,
		merged.Date, int64(merged.AmountPaise), merged.Category, merged.Description,
		merged.IsConfirmed, merged.UpdatedAt, id, userID)
	if err != nil {
		return domain.Transaction{}, storageErr("update transaction", err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return domain.Transaction{}, storageErr("commit update", err)
	}
	return merged, nil
}

// Delete implements store.Store.
func (s *Store) Delete(ctx context.Context, userID, id string) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM transactions WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return 0, storageErr("delete transaction", err)
	}
	return tag.RowsAffected(), nil
}

// DistinctCategories implements store.Store.
func (s *Store) DistinctCategories(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT DISTINCT category FROM transactions WHERE user_id = $1", userID)
	if err != nil {
		return nil, storageErr("list categories", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, storageErr("scan category", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate categories", err)
	}
	return out, nil
}

// stamp assigns identity and server timestamps to a validated record.
func stamp(tx domain.Transaction, userID string) domain.Transaction {
	now := time.Now().UTC()
	tx.ID = uuid.NewString()
	tx.UserID = userID
	tx.CreatedAt = now
	tx.UpdatedAt = now
	return tx
}

func insertArgs(tx domain.Transaction) []any {
	return []any{
		tx.ID, tx.UserID, tx.Date, int64(tx.AmountPaise),
		tx.Category, tx.Description, tx.IsConfirmed, tx.CreatedAt, tx.UpdatedAt,
	}
}

func scanTransaction(row pgx.Row) (domain.Transaction, error) {
	var tx domain.Transaction
	var amount int64
	err := row.Scan(&tx.ID, &tx.UserID, &tx.Date, &amount, &tx.Category,
		&tx.Description, &tx.IsConfirmed, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return domain.Transaction{}, err
	}
	tx.AmountPaise = money.Paise(amount)
	tx.Date = tx.Date.UTC()
	tx.CreatedAt = tx.CreatedAt.UTC()
	tx.UpdatedAt = tx.UpdatedAt.UTC()
	return tx, nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(store.ErrStorage, err))
}
