package checkout

import (
	"context"
	"testing"

	"ecomweb/internal/domain"
	orderrepo "ecomweb/internal/repository/order"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTx records commit/rollback. Embedding pgx.Tx leaves every other
// method panicking, which is fine: the stub repos below never touch it.
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeDB struct {
	tx *fakeTx
}

func (db *fakeDB) BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error) {
	db.tx = &fakeTx{}
	return db.tx, nil
}

type stubCarts struct {
	lines   []domain.CartLine
	cleared []int64
}

func (s *stubCarts) LinesTx(_ context.Context, _ pgx.Tx, _ int64) ([]domain.CartLine, error) {
	return s.lines, nil
}

func (s *stubCarts) ClearTx(_ context.Context, _ pgx.Tx, userID int64) error {
	s.cleared = append(s.cleared, userID)
	return nil
}

type stubOrders struct {
	created *orderrepo.CreateOrderInput
	nextID  int64
}

func (s *stubOrders) CreateTx(_ context.Context, _ pgx.Tx, in orderrepo.CreateOrderInput) (*domain.Order, error) {
	s.created = &in
	o := &domain.Order{
		ID:              s.nextID,
		UserID:          in.UserID,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		TotalCents:      in.TotalCents,
		Status:          domain.StatusPending,
	}
	for i, it := range in.Items {
		o.Items = append(o.Items, domain.OrderItem{
			ID:             int64(i + 1),
			OrderID:        o.ID,
			ProductID:      it.ProductID,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
		})
	}
	return o, nil
}

type stubLedger struct {
	stock    map[int64]int
	reserved []int64
}

func (s *stubLedger) ReserveTx(_ context.Context, _ pgx.Tx, productID int64, qty int) (int, error) {
	available := s.stock[productID]
	if available < qty {
		return 0, &domain.InsufficientStockError{ProductID: productID, Requested: qty, Available: available}
	}
	s.stock[productID] = available - qty
	s.reserved = append(s.reserved, productID)
	return s.stock[productID], nil
}

func line(productID int64, qty int, priceCents int64) domain.CartLine {
	l := domain.CartLine{UnitPriceCents: priceCents, LineTotalCents: priceCents * int64(qty)}
	l.ProductID = productID
	l.Quantity = qty
	return l
}

func TestCreateOrderEmptyCart(t *testing.T) {
	db := &fakeDB{}
	svc := New(db, &stubCarts{}, &stubOrders{}, &stubLedger{stock: map[int64]int{}}, nil)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID: 1, ShippingAddress: "1 Main St", PaymentMethod: "CARD",
	})
	require.ErrorIs(t, err, domain.ErrEmptyCart)
	assert.True(t, db.tx.rolledBack)
}

func TestCreateOrderValidatesInput(t *testing.T) {
	svc := New(&fakeDB{}, &stubCarts{}, &stubOrders{}, &stubLedger{}, nil)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{UserID: 1, PaymentMethod: "CARD"})
	require.Error(t, err)

	_, err = svc.CreateOrder(context.Background(), CreateOrderInput{UserID: 1, ShippingAddress: "1 Main St"})
	require.Error(t, err)
}

func TestCreateOrderAbortsWholeCartOnInsufficientStock(t *testing.T) {
	db := &fakeDB{}
	carts := &stubCarts{lines: []domain.CartLine{
		line(1, 3, 1000), // stock 5, fits
		line(2, 10, 500), // stock 2, does not
	}}
	orders := &stubOrders{nextID: 1}
	ledger := &stubLedger{stock: map[int64]int{1: 5, 2: 2}}
	svc := New(db, carts, orders, ledger, nil)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID: 1, ShippingAddress: "1 Main St", PaymentMethod: "CARD",
	})

	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(2), stockErr.ProductID)

	// whole attempt rolled back: no order, cart untouched
	assert.True(t, db.tx.rolledBack)
	assert.False(t, db.tx.committed)
	assert.Nil(t, orders.created)
	assert.Empty(t, carts.cleared)
}

func TestCreateOrderHappyPath(t *testing.T) {
	db := &fakeDB{}
	carts := &stubCarts{lines: []domain.CartLine{
		line(1, 2, 1000),
		line(2, 1, 500),
	}}
	orders := &stubOrders{nextID: 42}
	ledger := &stubLedger{stock: map[int64]int{1: 5, 2: 5}}
	svc := New(db, carts, orders, ledger, nil)

	order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID: 7, ShippingAddress: "1 Main St", PaymentMethod: "CARD",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(42), order.ID)
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Equal(t, int64(2*1000+500), order.TotalCents)
	require.Len(t, order.Items, 2)
	assert.Equal(t, int64(1000), order.Items[0].UnitPriceCents)
	assert.Equal(t, int64(500), order.Items[1].UnitPriceCents)

	assert.Equal(t, []int64{1, 2}, ledger.reserved)
	assert.Equal(t, 3, ledger.stock[1])
	assert.Equal(t, []int64{7}, carts.cleared)
	assert.True(t, db.tx.committed)
	assert.False(t, db.tx.rolledBack)
}
