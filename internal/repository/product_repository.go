package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/farm-shop/internal/domain"
)

// ProductRepository reads the catalog.
type ProductRepository interface {
	// List returns products ordered by id. An empty category lists all.
	List(ctx context.Context, category domain.ProductCategory) ([]domain.Product, error)
	GetByID(ctx context.Context, id int) (*domain.Product, error)
}

type productRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a Postgres-backed implementation.
func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &productRepository{pool: pool}
}

const productColumns = `id, name, category, price_cents, description, details, image_url, stock_quantity, created_at`

func (r *productRepository) List(ctx context.Context, category domain.ProductCategory) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	args := []any{}
	if category != "" {
		query += ` WHERE category=$1`
		args = append(args, category)
	}
	query += ` ORDER BY id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

func (r *productRepository) GetByID(ctx context.Context, id int) (*domain.Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id)
	return scanProduct(row)
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Category,
		&p.PriceCents,
		&p.Description,
		&p.Details,
		&p.ImageURL,
		&p.Stock,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
