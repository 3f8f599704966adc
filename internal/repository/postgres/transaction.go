package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cardshelf/internal/domain"
	"cardshelf/internal/domain/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TransactionManager implements the TransactionManager interface
type TransactionManager struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewTransactionManager creates a new transaction manager
func NewTransactionManager(pool *pgxpool.Pool, logger *slog.Logger) repositories.TransactionManager {
	return &TransactionManager{pool: pool, logger: logger}
}

// ExecTx executes a function within a READ COMMITTED transaction.
// Invariant checks rely on row locks (SELECT ... FOR UPDATE) and the sibling
// name constraint rather than on a stricter isolation level.
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	// Join an enclosing transaction
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := tm.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	// Safe even after commit; also covers a cancelled ctx
	defer func() {
		if err := tx.Rollback(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			tm.logger.Warn("rollback failed", "error", err)
		}
	}()

	if err := fn(withTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		// Deferred constraints are checked here
		if IsPgDuplicateError(err) && pgTableName(err) == FoldersTable {
			return fmt.Errorf("commit transaction: %w", domain.NewFolderNameConflict(""))
		}
		if IsPgRetryableError(err) {
			tm.logger.Warn("transaction aborted, caller may retry", "error", err)
		}
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
