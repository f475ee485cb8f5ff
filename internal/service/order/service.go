package order

import (
	"context"
	"io"
	"log"

	"ecomweb/internal/domain"
	orderrepo "ecomweb/internal/repository/order"

	"github.com/jackc/pgx/v5"
)

// Service manages order status transitions and the compensating stock
// release on cancellation.
type Service struct {
	db     txBeginner
	orders orderRepo
	ledger ledger
	logger *log.Logger
}

type txBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type orderRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	GetByIDTx(ctx context.Context, tx pgx.Tx, id int64) (*domain.Order, error)
	SetStatusTx(ctx context.Context, tx pgx.Tx, id int64, status domain.OrderStatus) error
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	ListByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)
	CountByStatus(ctx context.Context) ([]orderrepo.StatusCount, error)
	Count(ctx context.Context) (int64, error)
	RevenueCents(ctx context.Context) (int64, error)
}

type ledger interface {
	ReleaseTx(ctx context.Context, tx pgx.Tx, productID int64, qty int) (int, error)
}

func New(db txBeginner, orders orderRepo, ledger ledger, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{db: db, orders: orders, ledger: ledger, logger: logger}
}

// UpdateStatus moves an order through the status machine. A transition to
// CANCELLED releases every order item's stock in the same transaction as
// the status write, so a crash can never leave the order cancelled with
// stock un-restored or vice versa. Cancelling an already-cancelled order
// fails the transition check before any stock is touched, which is what
// makes the release at-most-once.
func (s *Service) UpdateStatus(ctx context.Context, orderID int64, next domain.OrderStatus) (*domain.Order, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	order, err := s.orders.GetByIDTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, domain.ErrInvalidStatus
	}

	if next == domain.StatusCancelled {
		for _, item := range order.Items {
			if _, err := s.ledger.ReleaseTx(ctx, tx, item.ProductID, item.Quantity); err != nil {
				s.logger.Printf("order: cancel order=%d release product=%d failed: %v", orderID, item.ProductID, err)
				return nil, err
			}
		}
	}

	if err := s.orders.SetStatusTx(ctx, tx, orderID, next); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.logger.Printf("order: order=%d status %s -> %s", orderID, order.Status, next)
	order.Status = next
	return order, nil
}

func (s *Service) Get(ctx context.Context, orderID int64) (*domain.Order, error) {
	return s.orders.GetByID(ctx, orderID)
}

func (s *Service) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Order, error) {
	return s.orders.ListAll(ctx)
}

func (s *Service) ListByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	return s.orders.ListByStatus(ctx, status)
}

// Revenue sums the frozen totals of all non-cancelled orders.
func (s *Service) Revenue(ctx context.Context) (int64, error) {
	return s.orders.RevenueCents(ctx)
}

// Count reports the number of orders ever placed.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.orders.Count(ctx)
}

// Stats returns total order count plus a count per status, with zeroes
// for statuses that have no orders.
func (s *Service) Stats(ctx context.Context) (map[string]int64, error) {
	counts, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	total, err := s.orders.Count(ctx)
	if err != nil {
		return nil, err
	}

	stats := map[string]int64{
		"totalOrders":     total,
		"pendingOrders":   0,
		"confirmedOrders": 0,
		"shippedOrders":   0,
		"deliveredOrders": 0,
		"cancelledOrders": 0,
	}
	for _, sc := range counts {
		switch sc.Status {
		case domain.StatusPending:
			stats["pendingOrders"] = sc.Count
		case domain.StatusConfirmed:
			stats["confirmedOrders"] = sc.Count
		case domain.StatusShipped:
			stats["shippedOrders"] = sc.Count
		case domain.StatusDelivered:
			stats["deliveredOrders"] = sc.Count
		case domain.StatusCancelled:
			stats["cancelledOrders"] = sc.Count
		}
	}
	return stats, nil
}
