package order

import (
	"context"

	"ecomweb/internal/domain"

	"github.com/jackc/pgx/v5"
)

type CreateOrderInput struct {
	UserID          int64
	ShippingAddress string
	PaymentMethod   string
	TotalCents      int64
	Items           []CreateOrderItem
}

type CreateOrderItem struct {
	ProductID      int64
	Quantity       int
	UnitPriceCents int64
}

// StatusCount is one row of the per-status aggregation.
type StatusCount struct {
	Status domain.OrderStatus
	Count  int64
}

type Repository interface {
	// CreateTx inserts the order row and all its items inside the
	// caller-held checkout transaction.
	CreateTx(ctx context.Context, tx pgx.Tx, in CreateOrderInput) (*domain.Order, error)

	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	// GetByIDTx reads the order with items under the cancellation
	// transaction so the released quantities match the status write.
	GetByIDTx(ctx context.Context, tx pgx.Tx, id int64) (*domain.Order, error)
	SetStatusTx(ctx context.Context, tx pgx.Tx, id int64, status domain.OrderStatus) error

	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	ListByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)
	CountByStatus(ctx context.Context) ([]StatusCount, error)
	Count(ctx context.Context) (int64, error)
	// RevenueCents sums totals of non-cancelled orders.
	RevenueCents(ctx context.Context) (int64, error)
}
