package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/farm-shop/internal/domain"
	"github.com/spec-kit/farm-shop/internal/events"
	"github.com/spec-kit/farm-shop/internal/repository"
	apperrors "github.com/spec-kit/farm-shop/pkg/util/errorutil"
)

const deliveryWindow = 48 * time.Hour

// OrderService places and lists customer orders.
type OrderService struct {
	orders     repository.OrderRepository
	products   repository.ProductRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time

	mu     sync.Mutex
	lastID int64
}

// OrderDependencies bundles repositories for the order service.
type OrderDependencies struct {
	OrderRepo   repository.OrderRepository
	ProductRepo repository.ProductRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewOrderService builds the service.
func NewOrderService(deps OrderDependencies) *OrderService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orders:     deps.OrderRepo,
		products:   deps.ProductRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// OrderLine is one requested product.
type OrderLine struct {
	ProductID int
	Quantity  int
}

// MaxLineQuantity bounds the quantity of a single order line.
const MaxLineQuantity = 1000

var errOrderTooLarge = apperrors.NewValidationError("Order total is too large", nil)

// PlaceOrderInput describes an order request.
type PlaceOrderInput struct {
	Items           []OrderLine
	PaymentMethod   string
	DeliveryAddress string
}

// Place creates a pending order for customer. Prices come from the catalog.
func (s *OrderService) Place(ctx context.Context, customer *domain.Customer, in PlaceOrderInput) (*domain.Order, error) {
	if len(in.Items) == 0 || strings.TrimSpace(in.PaymentMethod) == "" || strings.TrimSpace(in.DeliveryAddress) == "" {
		return nil, apperrors.NewValidationError("Missing required fields (items, payment_method, delivery_address)", nil)
	}

	items := make([]domain.OrderItem, 0, len(in.Items))
	var total int64
	for _, line := range in.Items {
		if line.Quantity <= 0 {
			return nil, apperrors.NewValidationError("Quantity must be at least 1", map[string]any{"product_id": line.ProductID})
		}
		if line.Quantity > MaxLineQuantity {
			return nil, apperrors.NewValidationError(fmt.Sprintf("Quantity must be at most %d", MaxLineQuantity), map[string]any{"product_id": line.ProductID})
		}
		product, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperrors.NewValidationError("Unknown product", map[string]any{"product_id": line.ProductID})
			}
			return nil, fmt.Errorf("load product %d: %w", line.ProductID, err)
		}
		item := domain.OrderItem{
			ProductID:      product.ID,
			Name:           product.Name,
			Quantity:       line.Quantity,
			UnitPriceCents: product.PriceCents,
		}
		if product.PriceCents > 0 && int64(line.Quantity) > math.MaxInt64/product.PriceCents {
			return nil, errOrderTooLarge
		}
		subtotal := item.SubtotalCents()
		if total > math.MaxInt64-subtotal {
			return nil, errOrderTooLarge
		}
		total += subtotal
		items = append(items, item)
	}

	placed := s.now()
	order := &domain.Order{
		ID:                s.nextOrderID(placed),
		CustomerID:        customer.ID,
		Items:             items,
		TotalCents:        total,
		PaymentMethod:     strings.TrimSpace(in.PaymentMethod),
		DeliveryAddress:   strings.TrimSpace(in.DeliveryAddress),
		Status:            domain.OrderStatusPending,
		EstimatedDelivery: placed.Add(deliveryWindow),
		CreatedAt:         placed,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:       events.EventOrderPlaced,
		CustomerID: customer.ID,
		Payload: events.OrderPlacedPayload{
			OrderID:           order.ID,
			TotalCents:        order.TotalCents,
			ItemCount:         len(order.Items),
			EstimatedDelivery: order.EstimatedDelivery,
		},
	})
	return order, nil
}

// ListForCustomer returns the customer's orders newest first.
func (s *OrderService) ListForCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	orders, err := s.orders.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

// nextOrderID derives ORD<unix-millis>, bumped so ids issued by this
// process never repeat.
func (s *OrderService) nextOrderID(at time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms := at.UnixMilli()
	if ms <= s.lastID {
		ms = s.lastID + 1
	}
	s.lastID = ms
	return "ORD" + strconv.FormatInt(ms, 10)
}
