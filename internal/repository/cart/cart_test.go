package cart

import (
	"context"
	"os"
	"testing"

	"ecomweb/internal/migrate"

	"github.com/jackc/pgx/v5/pgxpool"
)

func TestPostgres_UpsertMergesQuantities(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	userID := insertUser(ctx, t, pool, "alice")
	productID := insertProduct(ctx, t, pool, "Mug", 1299, 10)

	repo := NewPostgres(pool, nil)

	item, err := repo.Upsert(ctx, userID, productID, 2)
	if err != nil {
		t.Fatalf("Upsert insert: %v", err)
	}
	if item.Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", item.Quantity)
	}

	merged, err := repo.Upsert(ctx, userID, productID, 3)
	if err != nil {
		t.Fatalf("Upsert merge: %v", err)
	}
	if merged.ID != item.ID {
		t.Fatalf("expected merge into the same row, got new id %d", merged.ID)
	}
	if merged.Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got %d", merged.Quantity)
	}
}

func TestPostgres_LinesJoinProducts(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	userID := insertUser(ctx, t, pool, "alice")
	mugID := insertProduct(ctx, t, pool, "Mug", 1299, 10)
	penID := insertProduct(ctx, t, pool, "Pen", 250, 4)

	repo := NewPostgres(pool, nil)
	if _, err := repo.Upsert(ctx, userID, mugID, 2); err != nil {
		t.Fatalf("Upsert mug: %v", err)
	}
	if _, err := repo.Upsert(ctx, userID, penID, 3); err != nil {
		t.Fatalf("Upsert pen: %v", err)
	}

	lines, err := repo.Lines(ctx, userID)
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	byName := map[string]int64{}
	for _, l := range lines {
		byName[l.ProductName] = l.LineTotalCents
		if l.ProductName == "Pen" && l.StockQuantity != 4 {
			t.Fatalf("expected pen stock 4, got %d", l.StockQuantity)
		}
	}
	if byName["Mug"] != 2598 || byName["Pen"] != 750 {
		t.Fatalf("unexpected line totals %v", byName)
	}

	total, err := repo.Total(ctx, userID)
	if err != nil {
		t.Fatalf("Total: %v", err)
	}
	if total != 3348 {
		t.Fatalf("expected total 3348, got %d", total)
	}

	count, err := repo.Count(ctx, userID)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 cart rows, got %d", count)
	}
}

func TestPostgres_ClearEmptiesOnlyThatUser(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	alice := insertUser(ctx, t, pool, "alice")
	bob := insertUser(ctx, t, pool, "bob")
	productID := insertProduct(ctx, t, pool, "Mug", 1299, 10)

	repo := NewPostgres(pool, nil)
	if _, err := repo.Upsert(ctx, alice, productID, 1); err != nil {
		t.Fatalf("Upsert alice: %v", err)
	}
	if _, err := repo.Upsert(ctx, bob, productID, 1); err != nil {
		t.Fatalf("Upsert bob: %v", err)
	}

	if err := repo.Clear(ctx, alice); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	aliceLines, err := repo.Lines(ctx, alice)
	if err != nil {
		t.Fatalf("Lines alice: %v", err)
	}
	if len(aliceLines) != 0 {
		t.Fatalf("expected alice cart empty, got %d lines", len(aliceLines))
	}
	bobLines, err := repo.Lines(ctx, bob)
	if err != nil {
		t.Fatalf("Lines bob: %v", err)
	}
	if len(bobLines) != 1 {
		t.Fatalf("expected bob cart untouched, got %d lines", len(bobLines))
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

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE order_items, orders, cart_items, products, users RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
