package inventory

import (
	"context"
	"errors"
	"io"
	"log"

	"ecomweb/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresLedger struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Ledger {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresLedger{pool: pool, logger: logger}
}

// reserveSQL decrements only when the result stays non-negative. The
// condition and the write are one statement, so two concurrent reserves
// against the same row can never together exceed available stock.
const reserveSQL = `
UPDATE products
SET stock_quantity = stock_quantity - $2,
    updated_at = now()
WHERE id = $1 AND stock_quantity >= $2
RETURNING stock_quantity
`

const releaseSQL = `
UPDATE products
SET stock_quantity = stock_quantity + $2,
    updated_at = now()
WHERE id = $1
RETURNING stock_quantity
`

func (l *postgresLedger) Reserve(ctx context.Context, productID int64, qty int) (int, error) {
	return l.reserve(ctx, l.pool, productID, qty)
}

func (l *postgresLedger) ReserveTx(ctx context.Context, tx pgx.Tx, productID int64, qty int) (int, error) {
	return l.reserve(ctx, tx, productID, qty)
}

func (l *postgresLedger) reserve(ctx context.Context, q querier, productID int64, qty int) (int, error) {
	if qty <= 0 {
		return 0, domain.ErrInvalidQuantity
	}
	var remaining int
	err := q.QueryRow(ctx, reserveSQL, productID, qty).Scan(&remaining)
	if err == nil {
		l.logger.Printf("inventory: reserve product=%d qty=%d remaining=%d", productID, qty, remaining)
		return remaining, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		l.logger.Printf("inventory: reserve product=%d qty=%d error=%v", productID, qty, err)
		return 0, err
	}

	// No row updated: either the product is missing or stock was short.
	var name string
	var available int
	lookupErr := q.QueryRow(ctx, `SELECT name, stock_quantity FROM products WHERE id = $1`, productID).Scan(&name, &available)
	if lookupErr != nil {
		if errors.Is(lookupErr, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, lookupErr
	}
	return 0, &domain.InsufficientStockError{
		ProductID:   productID,
		ProductName: name,
		Requested:   qty,
		Available:   available,
	}
}

func (l *postgresLedger) Release(ctx context.Context, productID int64, qty int) (int, error) {
	return l.release(ctx, l.pool, productID, qty)
}

func (l *postgresLedger) ReleaseTx(ctx context.Context, tx pgx.Tx, productID int64, qty int) (int, error) {
	return l.release(ctx, tx, productID, qty)
}

func (l *postgresLedger) release(ctx context.Context, q querier, productID int64, qty int) (int, error) {
	if qty <= 0 {
		return 0, domain.ErrInvalidQuantity
	}
	var remaining int
	err := q.QueryRow(ctx, releaseSQL, productID, qty).Scan(&remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		l.logger.Printf("inventory: release product=%d qty=%d error=%v", productID, qty, err)
		return 0, err
	}
	l.logger.Printf("inventory: release product=%d qty=%d remaining=%d", productID, qty, remaining)
	return remaining, nil
}

func (l *postgresLedger) Available(ctx context.Context, productID int64, qty int) (bool, error) {
	var stock int
	err := l.pool.QueryRow(ctx, `SELECT stock_quantity FROM products WHERE id = $1`, productID).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, domain.ErrNotFound
		}
		return false, err
	}
	return stock >= qty, nil
}
