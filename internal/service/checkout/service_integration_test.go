package checkout

import (
	"context"
	"errors"
	"os"
	"testing"

	"ecomweb/internal/domain"
	"ecomweb/internal/migrate"
	cartrepo "ecomweb/internal/repository/cart"
	"ecomweb/internal/repository/inventory"
	orderrepo "ecomweb/internal/repository/order"
	ordersvc "ecomweb/internal/service/order"

	"github.com/jackc/pgx/v5/pgxpool"
)

func TestCheckout_Integration(t *testing.T) {
	ctx := context.Background()
	pool := integrationPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	userID := insertUser(ctx, t, pool, "alice")
	productID := insertProduct(ctx, t, pool, "Widget", 1000, 5)

	carts := cartrepo.NewPostgres(pool, nil)
	orders := orderrepo.NewPostgres(pool, nil)
	ledger := inventory.NewPostgres(pool, nil)
	svc := New(pool, carts, orders, ledger, nil)

	if _, err := carts.Upsert(ctx, userID, productID, 2); err != nil {
		t.Fatalf("fill cart: %v", err)
	}

	order, err := svc.CreateOrder(ctx, CreateOrderInput{
		UserID:          userID,
		ShippingAddress: "1 Main St",
		PaymentMethod:   "CARD",
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.TotalCents != 2000 {
		t.Fatalf("expected total 2000, got %d", order.TotalCents)
	}
	if order.Status != domain.StatusPending {
		t.Fatalf("expected PENDING, got %s", order.Status)
	}
	if got := stockOf(ctx, t, pool, productID); got != 3 {
		t.Fatalf("expected stock 3 after checkout, got %d", got)
	}
	lines, err := carts.Lines(ctx, userID)
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected cart emptied, got %d lines", len(lines))
	}

	// A later price change must not touch the frozen order.
	if _, err := pool.Exec(ctx, `UPDATE products SET price_cents = 9999 WHERE id = $1`, productID); err != nil {
		t.Fatalf("reprice product: %v", err)
	}
	got, err := orders.GetByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.TotalCents != 2000 {
		t.Fatalf("expected frozen total 2000 after reprice, got %d", got.TotalCents)
	}
	if len(got.Items) != 1 || got.Items[0].UnitPriceCents != 1000 {
		t.Fatalf("expected snapshot unit price 1000, got %+v", got.Items)
	}
}

func TestCheckoutThenCancel_Integration(t *testing.T) {
	ctx := context.Background()
	pool := integrationPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	userID := insertUser(ctx, t, pool, "alice")
	productID := insertProduct(ctx, t, pool, "Widget", 1000, 5)

	carts := cartrepo.NewPostgres(pool, nil)
	orders := orderrepo.NewPostgres(pool, nil)
	ledger := inventory.NewPostgres(pool, nil)
	checkout := New(pool, carts, orders, ledger, nil)
	lifecycle := ordersvc.New(pool, orders, ledger, nil)

	if _, err := carts.Upsert(ctx, userID, productID, 2); err != nil {
		t.Fatalf("fill cart: %v", err)
	}
	order, err := checkout.CreateOrder(ctx, CreateOrderInput{
		UserID:          userID,
		ShippingAddress: "1 Main St",
		PaymentMethod:   "CARD",
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if got := stockOf(ctx, t, pool, productID); got != 3 {
		t.Fatalf("expected stock 3 after checkout, got %d", got)
	}

	cancelled, err := lifecycle.UpdateStatus(ctx, order.ID, domain.StatusCancelled)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != domain.StatusCancelled {
		t.Fatalf("expected CANCELLED, got %s", cancelled.Status)
	}
	if got := stockOf(ctx, t, pool, productID); got != 5 {
		t.Fatalf("expected stock restored to 5, got %d", got)
	}

	// A second cancel must fail and must not credit stock again.
	if _, err := lifecycle.UpdateStatus(ctx, order.ID, domain.StatusCancelled); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus on re-cancel, got %v", err)
	}
	if got := stockOf(ctx, t, pool, productID); got != 5 {
		t.Fatalf("expected stock still 5 after re-cancel, got %d", got)
	}
}

func TestCheckoutAtomicAcrossLines_Integration(t *testing.T) {
	ctx := context.Background()
	pool := integrationPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	userID := insertUser(ctx, t, pool, "alice")
	plentyID := insertProduct(ctx, t, pool, "Widget", 1000, 5)
	scarceID := insertProduct(ctx, t, pool, "Gadget", 2000, 2)

	carts := cartrepo.NewPostgres(pool, nil)
	orders := orderrepo.NewPostgres(pool, nil)
	ledger := inventory.NewPostgres(pool, nil)
	svc := New(pool, carts, orders, ledger, nil)

	if _, err := carts.Upsert(ctx, userID, plentyID, 3); err != nil {
		t.Fatalf("fill cart: %v", err)
	}
	if _, err := carts.Upsert(ctx, userID, scarceID, 10); err != nil {
		t.Fatalf("fill cart: %v", err)
	}

	_, err := svc.CreateOrder(ctx, CreateOrderInput{
		UserID:          userID,
		ShippingAddress: "1 Main St",
		PaymentMethod:   "CARD",
	})
	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.ProductID != scarceID {
		t.Fatalf("expected failure on product %d, got %+v", scarceID, stockErr)
	}

	// No partial effects: both stocks intact, cart intact, no order rows.
	if got := stockOf(ctx, t, pool, plentyID); got != 5 {
		t.Fatalf("expected stock 5 on covered line, got %d", got)
	}
	if got := stockOf(ctx, t, pool, scarceID); got != 2 {
		t.Fatalf("expected stock 2 on short line, got %d", got)
	}
	lines, err := carts.Lines(ctx, userID)
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected cart untouched, got %d lines", len(lines))
	}
	count, err := orders.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no orders, got %d", count)
	}
}

func insertUser(ctx context.Context, t *testing.T, pool *pgxpool.Pool, username string) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $1 || '@example.com', 'x')
		RETURNING id
	`, username).Scan(&id)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return id
}

func insertProduct(ctx context.Context, t *testing.T, pool *pgxpool.Pool, name string, priceCents int64, stock int) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(ctx, `
		INSERT INTO products (name, description, price_cents, stock_quantity, category)
		VALUES ($1, '', $2, $3, 'Test')
		RETURNING id
	`, name, priceCents, stock).Scan(&id)
	if err != nil {
		t.Fatalf("insert product: %v", err)
	}
	return id
}

func stockOf(ctx context.Context, t *testing.T, pool *pgxpool.Pool, productID int64) int {
	t.Helper()
	var stock int
	if err := pool.QueryRow(ctx, `SELECT stock_quantity FROM products WHERE id = $1`, productID).Scan(&stock); err != nil {
		t.Fatalf("read stock: %v", err)
	}
	return stock
}

func integrationPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Fatalf("ping db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE order_items, orders, cart_items, products, users RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
