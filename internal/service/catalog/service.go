package catalog

import (
	"context"
	"strings"

	"ecomweb/internal/domain"
	catalogrepo "ecomweb/internal/repository/catalog"
	"ecomweb/internal/repository/inventory"
)

// Service is the catalog read/write surface. Stock changes go through the
// inventory ledger, never through product updates.
type Service struct {
	repo   catalogrepo.Repository
	ledger inventory.Ledger
}

func New(repo catalogrepo.Repository, ledger inventory.Ledger) *Service {
	return &Service{repo: repo, ledger: ledger}
}

type ProductInput struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	PriceCents    int64  `json:"priceCents"`
	StockQuantity int    `json:"stockQuantity"`
	Category      string `json:"category"`
	Brand         string `json:"brand"`
	ImageURL      string `json:"imageUrl"`
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" || in.PriceCents < 0 {
		return domain.ErrInvalidInput
	}
	if in.StockQuantity < 0 {
		return domain.ErrInvalidQuantity
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in ProductInput) (*domain.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, catalogrepo.CreateProductInput{
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		PriceCents:    in.PriceCents,
		StockQuantity: in.StockQuantity,
		Category:      in.Category,
		Brand:         in.Brand,
		ImageURL:      in.ImageURL,
	})
}

func (s *Service) Update(ctx context.Context, id int64, in ProductInput) (*domain.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, catalogrepo.UpdateProductInput{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		PriceCents:  in.PriceCents,
		Category:    in.Category,
		Brand:       in.Brand,
		ImageURL:    in.ImageURL,
	})
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	return s.repo.ListByCategory(ctx, category)
}

func (s *Service) ListAvailable(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListAvailable(ctx)
}

func (s *Service) Search(ctx context.Context, keyword string) ([]domain.Product, error) {
	return s.repo.Search(ctx, strings.TrimSpace(keyword))
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// IsAvailable is an advisory stock check; checkout re-validates through
// the ledger's atomic reserve.
func (s *Service) IsAvailable(ctx context.Context, productID int64, qty int) (bool, error) {
	return s.ledger.Available(ctx, productID, qty)
}
