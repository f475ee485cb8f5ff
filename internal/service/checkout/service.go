package checkout

import (
	"context"
	"io"
	"log"
	"strings"

	"ecomweb/internal/domain"
	orderrepo "ecomweb/internal/repository/order"

	"github.com/jackc/pgx/v5"
)

// Service converts a user's cart into an order inside a single database
// transaction: every stock reservation, the order and item inserts, and
// the cart clear either all commit or all roll back. A reservation
// failure on any line aborts the attempt with no stock debited.
type Service struct {
	db     txBeginner
	carts  cartRepo
	orders orderRepo
	ledger ledger
	logger *log.Logger
}

// txBeginner is satisfied by *pgxpool.Pool.
type txBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type cartRepo interface {
	LinesTx(ctx context.Context, tx pgx.Tx, userID int64) ([]domain.CartLine, error)
	ClearTx(ctx context.Context, tx pgx.Tx, userID int64) error
}

type orderRepo interface {
	CreateTx(ctx context.Context, tx pgx.Tx, in orderrepo.CreateOrderInput) (*domain.Order, error)
}

type ledger interface {
	ReserveTx(ctx context.Context, tx pgx.Tx, productID int64, qty int) (int, error)
}

func New(db txBeginner, carts cartRepo, orders orderRepo, ledger ledger, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{db: db, carts: carts, orders: orders, ledger: ledger, logger: logger}
}

type CreateOrderInput struct {
	UserID          int64
	ShippingAddress string
	PaymentMethod   string
}

// CreateOrder performs the cart-to-order checkout. The returned order has
// status PENDING and a total frozen from the prices in effect inside the
// transaction; the cart is empty afterwards.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	if strings.TrimSpace(in.ShippingAddress) == "" || strings.TrimSpace(in.PaymentMethod) == "" {
		return nil, domain.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	lines, err := s.carts.LinesTx(ctx, tx, in.UserID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	// Reserve every line first. The conditional UPDATE is the source of
	// truth for availability; a failure here rolls back the reservations
	// already made in this transaction.
	items := make([]orderrepo.CreateOrderItem, 0, len(lines))
	var total int64
	for _, line := range lines {
		if _, err := s.ledger.ReserveTx(ctx, tx, line.ProductID, line.Quantity); err != nil {
			s.logger.Printf("checkout: user=%d product=%d qty=%d aborted: %v", in.UserID, line.ProductID, line.Quantity, err)
			return nil, err
		}
		items = append(items, orderrepo.CreateOrderItem{
			ProductID:      line.ProductID,
			Quantity:       line.Quantity,
			UnitPriceCents: line.UnitPriceCents,
		})
		total += line.UnitPriceCents * int64(line.Quantity)
	}

	order, err := s.orders.CreateTx(ctx, tx, orderrepo.CreateOrderInput{
		UserID:          in.UserID,
		ShippingAddress: strings.TrimSpace(in.ShippingAddress),
		PaymentMethod:   strings.TrimSpace(in.PaymentMethod),
		TotalCents:      total,
		Items:           items,
	})
	if err != nil {
		return nil, err
	}

	if err := s.carts.ClearTx(ctx, tx, in.UserID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	s.logger.Printf("checkout: user=%d order=%d total_cents=%d lines=%d", in.UserID, order.ID, order.TotalCents, len(order.Items))
	return order, nil
}
