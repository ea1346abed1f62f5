package repositories

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-ledger/internal/logger"
)

// snapshotTxOptions gives every statement of a read the same snapshot.
var snapshotTxOptions = &sql.TxOptions{
	Isolation: sql.LevelRepeatableRead,
	ReadOnly:  true,
}

// withReadTx runs fn inside a read-only repeatable-read transaction. The
// transaction is rolled back on error or panic and committed otherwise.
func withReadTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, snapshotTxOptions)
	if err != nil {
		logger.Log.Errorw("failed to begin transaction", "error", err)
		return err
	}

	defer func() {
		if rec := recover(); rec != nil {
			_ = tx.Rollback()
			panic(rec)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Log.Warnw("failed to rollback transaction", "error", rbErr)
			}
			return
		}
		if err = tx.Commit(); err != nil {
			logger.Log.Errorw("failed to commit transaction", "error", err)
		}
	}()

	return fn(tx)
}
