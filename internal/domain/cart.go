package domain

import "time"

// CartItem is one (user, product) row. A user has at most one row per
// product; repeated adds merge quantities.
type CartItem struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	ProductID int64     `json:"productId"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
}

// CartLine is a CartItem joined with live product data for display. The
// unit price here drifts with the catalog; it is frozen only at checkout.
type CartLine struct {
	CartItem
	ProductName    string `json:"productName"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	LineTotalCents int64  `json:"lineTotalCents"`
	StockQuantity  int    `json:"stockQuantity"`
}
