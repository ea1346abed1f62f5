package repositories

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-ledger/internal/logger"
	"github.com/sbilibin2017/gw-ledger/internal/models"
	"github.com/shopspring/decimal"
)

// TransactionWriteRepository appends ledger entries to Postgres.
type TransactionWriteRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewTransactionWriteRepository(db *sqlx.DB, timeout time.Duration) *TransactionWriteRepository {
	return &TransactionWriteRepository{db: db, timeout: timeout}
}

// Save inserts one transaction in a single statement. Re-sending the same id is
// a no-op, so a retried insert cannot create a second row. A missing owner is
// reported as models.ErrInvalidOwner by the foreign key.
func (r *TransactionWriteRepository) Save(ctx context.Context, txn *models.Transaction) error {
	const query = `
		INSERT INTO transactions (id, owner_id, amount, category, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`
	args := []any{txn.ID, txn.OwnerID, txn.Amount, txn.Category, txn.Description, txn.CreatedAt}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, query, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow(
		"query", compactQuery(query),
		"args", args,
		"result", rowsAffected,
		"error", err,
	)

	return classifyError(err)
}

// TransactionReadRepository reads ledger entries from Postgres.
type TransactionReadRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewTransactionReadRepository(db *sqlx.DB, timeout time.Duration) *TransactionReadRepository {
	return &TransactionReadRepository{db: db, timeout: timeout}
}

// transactionFilterClause is shared by the count and page queries so both see
// the same rows.
const transactionFilterClause = `
		WHERE owner_id = $1
		  AND created_at <= $2
		  AND ($3::TIMESTAMPTZ IS NULL OR created_at >= $3)
		  AND ($4::TIMESTAMPTZ IS NULL OR created_at < $4)
		  AND ($5::VARCHAR = '' OR category = $5)
`

// List returns one page of the owner's transactions, newest first, together
// with the total number of matching rows. Count and page are read from the
// same snapshot. A cursor page seeks past the cursor instead of using OFFSET.
func (r *TransactionReadRepository) List(
	ctx context.Context,
	ownerID uuid.UUID,
	filter models.TransactionFilter,
	page models.Page,
) ([]models.Transaction, int64, error) {
	const countQuery = `SELECT COUNT(*) FROM transactions` + transactionFilterClause
	const pageQuery = `
		SELECT id, owner_id, amount, category, description, created_at
		FROM transactions` + transactionFilterClause + `
		  AND ($6::TIMESTAMPTZ IS NULL OR (created_at, id) < ($6, $7::UUID))
		ORDER BY created_at DESC, id DESC
		LIMIT $8 OFFSET $9
	`

	args := []any{ownerID, page.AsOf, filter.From, filter.To, filter.Category}
	var afterCreatedAt, afterID any
	if page.After != nil {
		afterCreatedAt, afterID = page.After.CreatedAt, page.After.ID
	}
	pageArgs := append(slices.Clone(args), afterCreatedAt, afterID, page.Size, page.Offset())

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var (
		total int64
		txns  []models.Transaction
	)
	err := withReadTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &total, countQuery, args...); err != nil {
			return err
		}
		return tx.SelectContext(ctx, &txns, pageQuery, pageArgs...)
	})

	logger.Log.Infow(
		"query", compactQuery(pageQuery),
		"args", pageArgs,
		"result", len(txns),
		"total", total,
		"error", err,
	)

	if err != nil {
		return nil, 0, classifyError(err)
	}
	if txns == nil {
		txns = []models.Transaction{}
	}
	return txns, total, nil
}

// SumByOwner returns the exact sum of the owner's amounts, zero when there are none.
func (r *TransactionReadRepository) SumByOwner(ctx context.Context, ownerID uuid.UUID) (decimal.Decimal, error) {
	const query = `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE owner_id = $1
	`

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var sum decimal.Decimal
	err := r.db.GetContext(ctx, &sum, query, ownerID)

	logger.Log.Infow(
		"query", compactQuery(query),
		"args", []any{ownerID},
		"result", sum.String(),
		"error", err,
	)

	if err != nil {
		return decimal.Zero, classifyError(err)
	}
	return sum, nil
}
