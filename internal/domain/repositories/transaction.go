package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager handles store transactions.
// The function's context carries the transaction; repositories called with it
// read and write inside the same snapshot. Returning an error, or cancelling
// the context before commit, rolls everything back.
type TransactionManager interface {
	// ExecTx executes a function within a transaction
	ExecTx(ctx context.Context, fn TxFn) error
}
