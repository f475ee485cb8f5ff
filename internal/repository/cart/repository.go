package cart

import (
	"context"

	"ecomweb/internal/domain"

	"github.com/jackc/pgx/v5"
)

// Repository stores per-user cart lines, one row per (user, product).
type Repository interface {
	Upsert(ctx context.Context, userID, productID int64, qty int) (*domain.CartItem, error)
	GetByID(ctx context.Context, cartItemID int64) (*domain.CartItem, error)
	GetByUserAndProduct(ctx context.Context, userID, productID int64) (*domain.CartItem, error)
	SetQuantity(ctx context.Context, cartItemID int64, qty int) (*domain.CartItem, error)
	Delete(ctx context.Context, cartItemID int64) error
	Clear(ctx context.Context, userID int64) error
	Lines(ctx context.Context, userID int64) ([]domain.CartLine, error)
	Total(ctx context.Context, userID int64) (int64, error)
	Count(ctx context.Context, userID int64) (int64, error)

	// LinesTx and ClearTx participate in the checkout transaction.
	LinesTx(ctx context.Context, tx pgx.Tx, userID int64) ([]domain.CartLine, error)
	ClearTx(ctx context.Context, tx pgx.Tx, userID int64) error
}
