package order

import (
	"context"
	"errors"
	"io"
	"log"

	"ecomweb/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderColumns = `id, user_id, order_date, shipping_address, payment_method, total_cents, status`

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

func (r *postgresRepo) CreateTx(ctx context.Context, tx pgx.Tx, in CreateOrderInput) (*domain.Order, error) {
	const q = `
INSERT INTO orders (user_id, shipping_address, payment_method, total_cents, status)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + orderColumns
	o, err := scanOrder(tx.QueryRow(ctx, q, in.UserID, in.ShippingAddress, in.PaymentMethod, in.TotalCents, domain.StatusPending))
	if err != nil {
		r.logger.Printf("order repo: create user=%d error=%v", in.UserID, err)
		return nil, err
	}

	const itemQ = `
INSERT INTO order_items (order_id, product_id, quantity, unit_price_cents)
VALUES ($1, $2, $3, $4)
RETURNING id
`
	for _, it := range in.Items {
		item := domain.OrderItem{
			OrderID:        o.ID,
			ProductID:      it.ProductID,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
		}
		if err := tx.QueryRow(ctx, itemQ, o.ID, it.ProductID, it.Quantity, it.UnitPriceCents).Scan(&item.ID); err != nil {
			r.logger.Printf("order repo: create item order=%d product=%d error=%v", o.ID, it.ProductID, err)
			return nil, err
		}
		o.Items = append(o.Items, item)
	}
	return o, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	o, err := scanOrder(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	items, err := r.items(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func (r *postgresRepo) GetByIDTx(ctx context.Context, tx pgx.Tx, id int64) (*domain.Order, error) {
	// FOR UPDATE serializes concurrent status changes on the same order,
	// so a cancellation cannot race another and double-release stock.
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`
	o, err := scanOrder(tx.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	items, err := r.items(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func (r *postgresRepo) SetStatusTx(ctx context.Context, tx pgx.Tx, id int64, status domain.OrderStatus) error {
	cmd, err := tx.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		r.logger.Printf("order repo: set status order=%d status=%s error=%v", id, status, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY order_date DESC`
	return r.queryOrders(ctx, q, userID)
}

func (r *postgresRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders ORDER BY order_date DESC`
	return r.queryOrders(ctx, q)
}

func (r *postgresRepo) ListByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE status = $1 ORDER BY order_date DESC`
	return r.queryOrders(ctx, q, status)
}

func (r *postgresRepo) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []StatusCount
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, err
		}
		result = append(result, sc)
	}
	return result, rows.Err()
}

func (r *postgresRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n)
	return n, err
}

func (r *postgresRepo) RevenueCents(ctx context.Context) (int64, error) {
	const q = `SELECT COALESCE(SUM(total_cents), 0) FROM orders WHERE status <> $1`
	var total int64
	err := r.pool.QueryRow(ctx, q, domain.StatusCancelled).Scan(&total)
	return total, err
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *postgresRepo) items(ctx context.Context, q querier, orderID int64) ([]domain.OrderItem, error) {
	const itemsQ = `
SELECT id, order_id, product_id, quantity, unit_price_cents
FROM order_items
WHERE order_id = $1
ORDER BY id ASC
`
	rows, err := q.Query(ctx, itemsQ, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.UnitPriceCents); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *postgresRepo) queryOrders(ctx context.Context, q string, args ...interface{}) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("order repo: query error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	return result, rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	if err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.OrderDate,
		&o.ShippingAddress,
		&o.PaymentMethod,
		&o.TotalCents,
		&o.Status,
	); err != nil {
		return nil, err
	}
	return &o, nil
}
