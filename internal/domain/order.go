package domain

import "time"

// OrderStatus tracks fulfilment.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Order is a placed order with its line items.
type Order struct {
	ID                string
	CustomerID        string // Customer.ID of the buyer
	Items             []OrderItem
	TotalCents        int64
	PaymentMethod     string
	DeliveryAddress   string
	Status            OrderStatus
	EstimatedDelivery time.Time
	CreatedAt         time.Time
}

// OrderItem is one product line of an order, priced at order time.
type OrderItem struct {
	ProductID      int
	Name           string
	Quantity       int
	UnitPriceCents int64
}

// SubtotalCents is quantity times unit price.
func (i OrderItem) SubtotalCents() int64 {
	return int64(i.Quantity) * i.UnitPriceCents
}
