package dto

import (
	"fmt"
	"time"

	"github.com/spec-kit/farm-shop/internal/domain"
)

// ProductResponse is a catalog entry.
type ProductResponse struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	Price         string `json:"price"`
	PriceCents    int64  `json:"price_cents"`
	Description   string `json:"description"`
	Details       string `json:"details"`
	ImageURL      string `json:"image_url"`
	StockQuantity int    `json:"stock_quantity"`
}

// NewProductResponse converts a domain product.
func NewProductResponse(p domain.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Category:      string(p.Category),
		Price:         FormatCents(p.PriceCents),
		PriceCents:    p.PriceCents,
		Description:   p.Description,
		Details:       p.Details,
		ImageURL:      p.ImageURL,
		StockQuantity: p.Stock,
	}
}

// OrderItemRequest is one cart line. Any price sent by the client is ignored.
type OrderItemRequest struct {
	ID       int `json:"id"`
	Quantity int `json:"quantity"`
}

// PlaceOrderRequest payload for checkout.
type PlaceOrderRequest struct {
	Items           []OrderItemRequest `json:"items"`
	PaymentMethod   string             `json:"payment_method"`
	DeliveryAddress string             `json:"delivery_address"`
}

// OrderItemResponse is a priced order line.
type OrderItemResponse struct {
	ProductID int    `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

// OrderResponse is a placed order.
type OrderResponse struct {
	OrderID           string              `json:"order_id"`
	Status            string              `json:"status"`
	TotalAmount       string              `json:"total_amount"`
	PaymentMethod     string              `json:"payment_method"`
	DeliveryAddress   string              `json:"delivery_address"`
	Items             []OrderItemResponse `json:"items"`
	CreatedAt         time.Time           `json:"created_at"`
	EstimatedDelivery time.Time           `json:"estimated_delivery"`
}

// NewOrderResponse converts a domain order.
func NewOrderResponse(o domain.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     FormatCents(it.UnitPriceCents),
		})
	}
	return OrderResponse{
		OrderID:           o.ID,
		Status:            string(o.Status),
		TotalAmount:       FormatCents(o.TotalCents),
		PaymentMethod:     o.PaymentMethod,
		DeliveryAddress:   o.DeliveryAddress,
		Items:             items,
		CreatedAt:         o.CreatedAt,
		EstimatedDelivery: o.EstimatedDelivery,
	}
}

// FormatCents renders cents as a decimal amount, 499 as "4.99".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign, cents = "-", -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
