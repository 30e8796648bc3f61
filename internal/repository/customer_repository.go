package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/farm-shop/internal/domain"
)

// CustomerRepository defines persistence access for shop customers.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	GetByUsername(ctx context.Context, username string) (*domain.Customer, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Customer, error)
	UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error)
	CustomerIDTaken(ctx context.Context, customerID string) (bool, error)
}

type customerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a Postgres-backed implementation.
func NewCustomerRepository(pool *pgxpool.Pool) CustomerRepository {
	return &customerRepository{pool: pool}
}

const customerColumns = `id, customer_id, username, email, phone, address, password_hash, created_at, updated_at`

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	const query = `
        INSERT INTO customers (customer_id, username, email, phone, address, password_hash)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		customer.CustomerID,
		customer.Username,
		customer.Email,
		customer.Phone,
		customer.Address,
		customer.PasswordHash,
	).Scan(&customer.ID, &customer.CreatedAt, &customer.UpdatedAt)
	return translate(err)
}

func (r *customerRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE customers SET password_hash=$1, updated_at=NOW() WHERE id=$2`

	cmd, err := r.pool.Exec(ctx, query, passwordHash, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *customerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	return r.getOne(ctx, `SELECT `+customerColumns+` FROM customers WHERE id=$1`, id)
}

func (r *customerRepository) GetByUsername(ctx context.Context, username string) (*domain.Customer, error) {
	return r.getOne(ctx, `SELECT `+customerColumns+` FROM customers WHERE username=$1`, username)
}

// GetByPhone returns the earliest account registered with phone. Phone
// numbers are not unique.
func (r *customerRepository) GetByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	return r.getOne(ctx, `SELECT `+customerColumns+` FROM customers WHERE phone=$1 ORDER BY created_at LIMIT 1`, phone)
}

func (r *customerRepository) UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM customers WHERE username=$1 OR email=$2)`
	var taken bool
	err := r.pool.QueryRow(ctx, query, username, email).Scan(&taken)
	return taken, err
}

func (r *customerRepository) CustomerIDTaken(ctx context.Context, customerID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM customers WHERE customer_id=$1)`
	var taken bool
	err := r.pool.QueryRow(ctx, query, customerID).Scan(&taken)
	return taken, err
}

func (r *customerRepository) getOne(ctx context.Context, query string, arg any) (*domain.Customer, error) {
	var c domain.Customer
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&c.ID,
		&c.CustomerID,
		&c.Username,
		&c.Email,
		&c.Phone,
		&c.Address,
		&c.PasswordHash,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}
