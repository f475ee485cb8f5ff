package inventory

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Ledger owns products.stock_quantity. Reserve and Release are the only
// write paths; catalog updates never touch the column.
//
// Available is advisory: a positive answer does not guarantee a later
// Reserve succeeds. Anything gating a state change must use Reserve's
// atomic outcome.
type Ledger interface {
	Reserve(ctx context.Context, productID int64, qty int) (int, error)
	Release(ctx context.Context, productID int64, qty int) (int, error)
	Available(ctx context.Context, productID int64, qty int) (bool, error)

	// Tx variants run the same statements inside a caller-held transaction,
	// so checkout and cancellation keep stock movements atomic with their
	// order writes.
	ReserveTx(ctx context.Context, tx pgx.Tx, productID int64, qty int) (int, error)
	ReleaseTx(ctx context.Context, tx pgx.Tx, productID int64, qty int) (int, error)
}
