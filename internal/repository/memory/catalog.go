package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/farm-shop/internal/domain"
	"github.com/spec-kit/farm-shop/internal/repository"
)

const placeholderImage = "/placeholder.svg?height=200&width=200"

// SeedProducts is the sample catalog also inserted by the SQL migrations.
func SeedProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "Fresh Whole Milk", Category: domain.CategoryDairy, PriceCents: 499, Description: "Premium quality whole milk from grass-fed cows", Details: "Rich in calcium and protein. Perfect for drinking, cooking, and baking.", ImageURL: placeholderImage, Stock: 50},
		{ID: 2, Name: "Organic Butter", Category: domain.CategoryDairy, PriceCents: 699, Description: "Creamy organic butter made from fresh cream", Details: "Made from the cream of grass-fed cows. No artificial additives.", ImageURL: placeholderImage, Stock: 30},
		{ID: 3, Name: "Aged Cheddar Cheese", Category: domain.CategoryDairy, PriceCents: 1299, Description: "Sharp aged cheddar cheese, aged for 12 months", Details: "Aged to perfection for 12 months. Rich, sharp flavor.", ImageURL: placeholderImage, Stock: 25},
		{ID: 4, Name: "Greek Yogurt", Category: domain.CategoryDairy, PriceCents: 599, Description: "Thick and creamy Greek yogurt", Details: "High in protein and probiotics. Made with live active cultures.", ImageURL: placeholderImage, Stock: 40},
		{ID: 5, Name: "Premium Ground Beef", Category: domain.CategoryMeat, PriceCents: 899, Description: "Lean ground beef from grass-fed cattle", Details: "85% lean ground beef from cattle raised on our farm.", ImageURL: placeholderImage, Stock: 20},
		{ID: 6, Name: "Free-Range Chicken", Category: domain.CategoryMeat, PriceCents: 1299, Description: "Whole free-range chicken", Details: "Raised on open pastures with access to natural feed.", ImageURL: placeholderImage, Stock: 15},
		{ID: 7, Name: "Pork Tenderloin", Category: domain.CategoryMeat, PriceCents: 1599, Description: "Tender pork tenderloin", Details: "Lean and tender cut from heritage breed pigs.", ImageURL: placeholderImage, Stock: 12},
		{ID: 8, Name: "Farm Fresh Eggs", Category: domain.CategoryDairy, PriceCents: 399, Description: "Fresh eggs from free-range hens", Details: "Collected daily from our free-range hens.", ImageURL: placeholderImage, Stock: 60},
	}
}

// ProductRepository is an in-memory repository.ProductRepository.
type ProductRepository struct {
	mu       sync.RWMutex
	products map[int]domain.Product
}

// NewProductRepository returns a repository holding products. With no
// arguments it is seeded with SeedProducts.
func NewProductRepository(products ...domain.Product) *ProductRepository {
	if len(products) == 0 {
		products = SeedProducts()
	}
	now := time.Now()
	r := &ProductRepository{products: make(map[int]domain.Product, len(products))}
	for _, p := range products {
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		r.products[p.ID] = p
	}
	return r
}

var _ repository.ProductRepository = (*ProductRepository)(nil)

func (r *ProductRepository) List(_ context.Context, category domain.ProductCategory) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Product
	for _, p := range r.products {
		if category == "" || p.Category == category {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *ProductRepository) GetByID(_ context.Context, id int) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

// OrderRepository is an in-memory repository.OrderRepository.
type OrderRepository struct {
	mu     sync.RWMutex
	orders []domain.Order
}

// NewOrderRepository returns an empty repository.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

var _ repository.OrderRepository = (*OrderRepository)(nil)

func (r *OrderRepository) Create(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, o := range r.orders {
		if o.ID == order.ID {
			return repository.ErrDuplicate
		}
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	stored := *order
	stored.Items = append([]domain.OrderItem(nil), order.Items...)
	r.orders = append(r.orders, stored)
	return nil
}

func (r *OrderRepository) ListByCustomer(_ context.Context, customerID string) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Order
	for i := len(r.orders) - 1; i >= 0; i-- {
		if o := r.orders[i]; o.CustomerID == customerID {
			o.Items = append([]domain.OrderItem(nil), o.Items...)
			result = append(result, o)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}
