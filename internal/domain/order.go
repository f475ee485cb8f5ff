package domain

import (
	"strings"
	"time"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// ParseOrderStatus maps a case-insensitive string to a known status.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, nil
	case StatusConfirmed:
		return StatusConfirmed, nil
	case StatusShipped:
		return StatusShipped, nil
	case StatusDelivered:
		return StatusDelivered, nil
	case StatusCancelled:
		return StatusCancelled, nil
	}
	return "", ErrInvalidStatus
}

// CanTransitionTo reports whether the status machine allows moving from s
// to next. DELIVERED and CANCELLED are terminal; cancellation is reachable
// from every non-terminal state.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusShipped || next == StatusCancelled
	case StatusShipped:
		return next == StatusDelivered || next == StatusCancelled
	}
	return false
}

// Order is immutable after creation except for Status. TotalCents is the
// sum of item subtotals frozen at checkout time.
type Order struct {
	ID              int64       `json:"id"`
	UserID          int64       `json:"userId"`
	OrderDate       time.Time   `json:"orderDate"`
	ShippingAddress string      `json:"shippingAddress"`
	PaymentMethod   string      `json:"paymentMethod"`
	TotalCents      int64       `json:"totalCents"`
	Status          OrderStatus `json:"status"`
	Items           []OrderItem `json:"items,omitempty"`
}

// OrderItem snapshots the product price at purchase time, decoupled from
// later catalog changes.
type OrderItem struct {
	ID             int64 `json:"id"`
	OrderID        int64 `json:"orderId"`
	ProductID      int64 `json:"productId"`
	Quantity       int   `json:"quantity"`
	UnitPriceCents int64 `json:"unitPriceCents"`
}
