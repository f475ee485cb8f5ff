package cart

import (
	"context"
	"errors"
	"io"
	"log"

	"ecomweb/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const itemColumns = `id, user_id, product_id, quantity, created_at`

// linesSQL joins live product data; cart totals drift with catalog prices
// until checkout freezes them into order_items.
const linesSQL = `
SELECT ci.id, ci.user_id, ci.product_id, ci.quantity, ci.created_at,
       p.name, p.price_cents, p.price_cents * ci.quantity, p.stock_quantity
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.user_id = $1
ORDER BY ci.created_at ASC
`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

// Upsert inserts a new line or adds qty to an existing one.
func (r *postgresRepo) Upsert(ctx context.Context, userID, productID int64, qty int) (*domain.CartItem, error) {
	const q = `
INSERT INTO cart_items (user_id, product_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (user_id, product_id) DO UPDATE
SET quantity = cart_items.quantity + EXCLUDED.quantity
RETURNING ` + itemColumns
	item, err := scanItem(r.pool.QueryRow(ctx, q, userID, productID, qty))
	if err != nil {
		r.logger.Printf("cart repo: upsert user=%d product=%d error=%v", userID, productID, err)
		return nil, err
	}
	return item, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, cartItemID int64) (*domain.CartItem, error) {
	const q = `SELECT ` + itemColumns + ` FROM cart_items WHERE id = $1`
	item, err := scanItem(r.pool.QueryRow(ctx, q, cartItemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *postgresRepo) GetByUserAndProduct(ctx context.Context, userID, productID int64) (*domain.CartItem, error) {
	const q = `SELECT ` + itemColumns + ` FROM cart_items WHERE user_id = $1 AND product_id = $2`
	item, err := scanItem(r.pool.QueryRow(ctx, q, userID, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *postgresRepo) SetQuantity(ctx context.Context, cartItemID int64, qty int) (*domain.CartItem, error) {
	const q = `
UPDATE cart_items
SET quantity = $2
WHERE id = $1
RETURNING ` + itemColumns
	item, err := scanItem(r.pool.QueryRow(ctx, q, cartItemID, qty))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("cart repo: set quantity item=%d qty=%d error=%v", cartItemID, qty, err)
		return nil, err
	}
	return item, nil
}

func (r *postgresRepo) Delete(ctx context.Context, cartItemID int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, cartItemID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Clear(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	return err
}

func (r *postgresRepo) ClearTx(ctx context.Context, tx pgx.Tx, userID int64) error {
	_, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	return err
}

func (r *postgresRepo) Lines(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	rows, err := r.pool.Query(ctx, linesSQL, userID)
	if err != nil {
		r.logger.Printf("cart repo: lines user=%d error=%v", userID, err)
		return nil, err
	}
	return collectLines(rows)
}

func (r *postgresRepo) LinesTx(ctx context.Context, tx pgx.Tx, userID int64) ([]domain.CartLine, error) {
	rows, err := tx.Query(ctx, linesSQL, userID)
	if err != nil {
		return nil, err
	}
	return collectLines(rows)
}

func (r *postgresRepo) Total(ctx context.Context, userID int64) (int64, error) {
	const q = `
SELECT COALESCE(SUM(p.price_cents * ci.quantity), 0)
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.user_id = $1
`
	var total int64
	err := r.pool.QueryRow(ctx, q, userID).Scan(&total)
	return total, err
}

func (r *postgresRepo) Count(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM cart_items WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

func collectLines(rows pgx.Rows) ([]domain.CartLine, error) {
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var l domain.CartLine
		if err := rows.Scan(
			&l.ID,
			&l.UserID,
			&l.ProductID,
			&l.Quantity,
			&l.CreatedAt,
			&l.ProductName,
			&l.UnitPriceCents,
			&l.LineTotalCents,
			&l.StockQuantity,
		); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func scanItem(row pgx.Row) (*domain.CartItem, error) {
	var item domain.CartItem
	if err := row.Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.CreatedAt); err != nil {
		return nil, err
	}
	return &item, nil
}
