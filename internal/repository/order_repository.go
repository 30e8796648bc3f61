package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/farm-shop/internal/domain"
)

// OrderRepository persists orders together with their items.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	// ListByCustomer returns the customer's orders newest first.
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
}

type orderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns a Postgres-backed implementation.
func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &orderRepository{pool: pool}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const insertOrder = `
            INSERT INTO orders (order_id, customer_id, total_cents, payment_method, delivery_address, status, estimated_delivery)
            VALUES ($1,$2,$3,$4,$5,$6,$7)
            RETURNING created_at`
		if err := tx.QueryRow(ctx, insertOrder,
			order.ID,
			order.CustomerID,
			order.TotalCents,
			order.PaymentMethod,
			order.DeliveryAddress,
			order.Status,
			order.EstimatedDelivery,
		).Scan(&order.CreatedAt); err != nil {
			return translate(err)
		}

		const insertItem = `
            INSERT INTO order_items (order_id, product_id, quantity, unit_price_cents)
            VALUES ($1,$2,$3,$4)`
		batch := &pgx.Batch{}
		for _, item := range order.Items {
			batch.Queue(insertItem, order.ID, item.ProductID, item.Quantity, item.UnitPriceCents)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

func (r *orderRepository) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	const query = `
        SELECT o.order_id, o.customer_id, o.total_cents, o.payment_method, o.delivery_address,
               o.status, o.estimated_delivery, o.created_at,
               oi.product_id, p.name, oi.quantity, oi.unit_price_cents
        FROM orders o
        JOIN order_items oi ON oi.order_id = o.order_id
        JOIN products p ON p.id = oi.product_id
        WHERE o.customer_id=$1
        ORDER BY o.created_at DESC, o.order_id DESC, oi.id`

	rows, err := r.pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		var (
			o    domain.Order
			item domain.OrderItem
		)
		if err := rows.Scan(
			&o.ID,
			&o.CustomerID,
			&o.TotalCents,
			&o.PaymentMethod,
			&o.DeliveryAddress,
			&o.Status,
			&o.EstimatedDelivery,
			&o.CreatedAt,
			&item.ProductID,
			&item.Name,
			&item.Quantity,
			&item.UnitPriceCents,
		); err != nil {
			return nil, err
		}
		if n := len(result); n > 0 && result[n-1].ID == o.ID {
			result[n-1].Items = append(result[n-1].Items, item)
			continue
		}
		o.Items = []domain.OrderItem{item}
		result = append(result, o)
	}
	return result, rows.Err()
}
