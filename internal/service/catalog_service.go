package service

import (
	"context"
	"errors"
	"strings"

	"github.com/spec-kit/farm-shop/internal/domain"
	"github.com/spec-kit/farm-shop/internal/repository"
	apperrors "github.com/spec-kit/farm-shop/pkg/util/errorutil"
)

// CatalogService exposes the product catalog.
type CatalogService struct {
	products repository.ProductRepository
}

// NewCatalogService builds the service.
func NewCatalogService(products repository.ProductRepository) *CatalogService {
	return &CatalogService{products: products}
}

// List returns the products of category. "" and "all" list everything.
func (s *CatalogService) List(ctx context.Context, category string) ([]domain.Product, error) {
	c := domain.ProductCategory(strings.ToLower(strings.TrimSpace(category)))
	if c == "all" {
		c = ""
	}
	if c != "" && !c.Valid() {
		return nil, apperrors.NewValidationError("unknown category", map[string]any{"category": category})
	}
	products, err := s.products.List(ctx, c)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

// Get returns one product.
func (s *CatalogService) Get(ctx context.Context, id int) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("product", map[string]any{"id": id})
	}
	return p, err
}
