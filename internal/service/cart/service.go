package cart

import (
	"context"

	"ecomweb/internal/domain"
)

// Service implements the cart store. Its stock checks are advisory: the
// checkout coordinator is the only place stock is actually enforced.
type Service struct {
	repo     cartRepo
	products productRepo
}

type cartRepo interface {
	Upsert(ctx context.Context, userID, productID int64, qty int) (*domain.CartItem, error)
	GetByID(ctx context.Context, cartItemID int64) (*domain.CartItem, error)
	GetByUserAndProduct(ctx context.Context, userID, productID int64) (*domain.CartItem, error)
	SetQuantity(ctx context.Context, cartItemID int64, qty int) (*domain.CartItem, error)
	Delete(ctx context.Context, cartItemID int64) error
	Clear(ctx context.Context, userID int64) error
	Lines(ctx context.Context, userID int64) ([]domain.CartLine, error)
	Total(ctx context.Context, userID int64) (int64, error)
	Count(ctx context.Context, userID int64) (int64, error)
}

type productRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
}

func New(repo cartRepo, products productRepo) *Service {
	return &Service{repo: repo, products: products}
}

// AddItem adds qty of a product to the user's cart, merging with an
// existing line. The merged quantity is checked against current stock.
func (s *Service) AddItem(ctx context.Context, userID, productID int64, qty int) (*domain.CartItem, error) {
	if qty <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	wanted := qty
	existing, err := s.repo.GetByUserAndProduct(ctx, userID, productID)
	switch {
	case err == nil:
		wanted += existing.Quantity
	case err != domain.ErrNotFound:
		return nil, err
	}

	if product.StockQuantity < wanted {
		return nil, &domain.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   wanted,
			Available:   product.StockQuantity,
		}
	}
	return s.repo.Upsert(ctx, userID, productID, qty)
}

// SetQuantity updates a line in place. Zero deletes the line, returning
// (nil, nil), same as Remove. Negative quantities are rejected.
func (s *Service) SetQuantity(ctx context.Context, cartItemID int64, qty int) (*domain.CartItem, error) {
	if qty < 0 {
		return nil, domain.ErrInvalidQuantity
	}
	item, err := s.repo.GetByID(ctx, cartItemID)
	if err != nil {
		return nil, err
	}
	if qty == 0 {
		if err := s.repo.Delete(ctx, cartItemID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	product, err := s.products.GetByID(ctx, item.ProductID)
	if err != nil {
		return nil, err
	}
	if product.StockQuantity < qty {
		return nil, &domain.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   qty,
			Available:   product.StockQuantity,
		}
	}
	return s.repo.SetQuantity(ctx, cartItemID, qty)
}

func (s *Service) Remove(ctx context.Context, cartItemID int64) error {
	return s.repo.Delete(ctx, cartItemID)
}

func (s *Service) Clear(ctx context.Context, userID int64) error {
	return s.repo.Clear(ctx, userID)
}

func (s *Service) Lines(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	return s.repo.Lines(ctx, userID)
}

// Total sums quantity x live product price. It drifts with the catalog
// until checkout freezes prices into the order.
func (s *Service) Total(ctx context.Context, userID int64) (int64, error) {
	return s.repo.Total(ctx, userID)
}

func (s *Service) Count(ctx context.Context, userID int64) (int64, error) {
	return s.repo.Count(ctx, userID)
}
