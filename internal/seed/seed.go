package seed

import (
	"context"
	"fmt"

	"ecomweb/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type productSeed struct {
	Name          string
	Description   string
	PriceCents    int64
	StockQuantity int
	Category      string
	Brand         string
}

// Apply inserts demo accounts and a small catalog for manual testing. It
// is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	if err := ensureUser(ctx, pool, "admin", "admin@ecomweb.local", "admin123", domain.RoleAdmin); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	if err := ensureUser(ctx, pool, "demo", "demo@ecomweb.local", "demo123", domain.RoleUser); err != nil {
		return fmt.Errorf("ensure demo user: %w", err)
	}

	products := []productSeed{
		{
			Name:          "Wireless Headphones",
			Description:   "Over-ear wireless headphones with noise cancellation",
			PriceCents:    14999,
			StockQuantity: 50,
			Category:      "Electronics",
			Brand:         "SoundWave",
		},
		{
			Name:          "Smart Watch",
			Description:   "Fitness tracking smart watch with heart rate monitor",
			PriceCents:    19999,
			StockQuantity: 30,
			Category:      "Electronics",
			Brand:         "TechFit",
		},
		{
			Name:          "Cotton T-Shirt",
			Description:   "Soft cotton tee, unisex fit",
			PriceCents:    1999,
			StockQuantity: 120,
			Category:      "Clothing",
			Brand:         "BasicWear",
		},
		{
			Name:          "Running Shoes",
			Description:   "Lightweight running shoes with cushioned sole",
			PriceCents:    8999,
			StockQuantity: 45,
			Category:      "Footwear",
			Brand:         "FleetFoot",
		},
		{
			Name:          "Ceramic Mug",
			Description:   "350ml ceramic mug, dishwasher safe",
			PriceCents:    1299,
			StockQuantity: 200,
			Category:      "Home",
			Brand:         "KitchenCo",
		},
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Name, err)
		}
	}

	return nil
}

func ensureUser(ctx context.Context, pool *pgxpool.Pool, username, email, password, role string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO users (username, email, password_hash, role)
VALUES ($1, $2, $3, $4)
ON CONFLICT (username) DO NOTHING
`
	_, err = pool.Exec(ctx, q, username, email, string(hashed), role)
	return err
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	// name is not unique in the schema, so upsert by hand to keep reruns
	// from duplicating the demo catalog.
	const q = `
UPDATE products
SET description = $2, price_cents = $3, category = $4, brand = $5, updated_at = now()
WHERE name = $1
`
	cmd, err := pool.Exec(ctx, q, p.Name, p.Description, p.PriceCents, p.Category, p.Brand)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() > 0 {
		return nil
	}
	const ins = `
INSERT INTO products (name, description, price_cents, stock_quantity, category, brand)
VALUES ($1, $2, $3, $4, $5, $6)
`
	_, err = pool.Exec(ctx, ins, p.Name, p.Description, p.PriceCents, p.StockQuantity, p.Category, p.Brand)
	return err
}
