// Package memory implements the repository interfaces in process memory. It
// backs demo mode when no database is configured and the service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/farm-shop/internal/domain"
	"github.com/spec-kit/farm-shop/internal/repository"
)

// CustomerRepository is an in-memory repository.CustomerRepository.
type CustomerRepository struct {
	mu        sync.RWMutex
	customers map[string]domain.Customer
}

// NewCustomerRepository returns an empty repository.
func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{customers: make(map[string]domain.Customer)}
}

var _ repository.CustomerRepository = (*CustomerRepository)(nil)

func (r *CustomerRepository) Create(_ context.Context, customer *domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.customers {
		if c.Username == customer.Username || c.Email == customer.Email || c.CustomerID == customer.CustomerID {
			return repository.ErrDuplicate
		}
	}
	now := time.Now()
	customer.ID = uuid.NewString()
	customer.CreatedAt = now
	customer.UpdatedAt = now
	r.customers[customer.ID] = *customer
	return nil
}

func (r *CustomerRepository) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.customers[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.PasswordHash = passwordHash
	c.UpdatedAt = time.Now()
	r.customers[id] = c
	return nil
}

func (r *CustomerRepository) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.customers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *CustomerRepository) GetByUsername(_ context.Context, username string) (*domain.Customer, error) {
	return r.find(func(c domain.Customer) bool { return c.Username == username })
}

func (r *CustomerRepository) GetByPhone(_ context.Context, phone string) (*domain.Customer, error) {
	return r.find(func(c domain.Customer) bool { return c.Phone == phone })
}

func (r *CustomerRepository) UsernameOrEmailTaken(_ context.Context, username, email string) (bool, error) {
	_, err := r.find(func(c domain.Customer) bool {
		return c.Username == username || c.Email == email
	})
	return err == nil, nil
}

func (r *CustomerRepository) CustomerIDTaken(_ context.Context, customerID string) (bool, error) {
	_, err := r.find(func(c domain.Customer) bool { return c.CustomerID == customerID })
	return err == nil, nil
}

// find returns the earliest created customer matching.
func (r *CustomerRepository) find(match func(domain.Customer) bool) (*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var hits []domain.Customer
	for _, c := range r.customers {
		if match(c) {
			hits = append(hits, c)
		}
	}
	if len(hits) == 0 {
		return nil, repository.ErrNotFound
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].CreatedAt.Before(hits[j].CreatedAt) })
	return &hits[0], nil
}
