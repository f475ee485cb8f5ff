package catalog

import (
	"context"

	"ecomweb/internal/domain"

	"github.com/jackc/pgx/v5"
)

type CreateProductInput struct {
	Name          string
	Description   string
	PriceCents    int64
	StockQuantity int
	Category      string
	Brand         string
	ImageURL      string
}

type UpdateProductInput struct {
	Name        string
	Description string
	PriceCents  int64
	Category    string
	Brand       string
	ImageURL    string
}

// Repository reads and writes catalog rows. Stock is intentionally absent
// from UpdateProductInput: stock_quantity is owned by the inventory ledger.
type Repository interface {
	Create(ctx context.Context, in CreateProductInput) (*domain.Product, error)
	Update(ctx context.Context, id int64, in UpdateProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	GetByIDTx(ctx context.Context, tx pgx.Tx, id int64) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	ListByCategory(ctx context.Context, category string) ([]domain.Product, error)
	ListAvailable(ctx context.Context) ([]domain.Product, error)
	Search(ctx context.Context, keyword string) ([]domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)
}
