package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCustomerRegistered     EventType = "customer_registered"
	EventPasswordResetRequested EventType = "password_reset_requested"
	EventPasswordReset          EventType = "password_reset"
	EventOrderPlaced            EventType = "order_placed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	CustomerID string    `json:"customer_id"`
	Timestamp  time.Time `json:"timestamp"`
	Payload    any       `json:"payload"`
}

// CustomerRegisteredPayload payload.
type CustomerRegisteredPayload struct {
	CustomerID string `json:"customer_id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
}

// PasswordResetRequestedPayload carries the code to deliver by SMS.
type PasswordResetRequestedPayload struct {
	Phone     string    `json:"phone"`
	Code      string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// OrderPlacedPayload payload.
type OrderPlacedPayload struct {
	OrderID           string    `json:"order_id"`
	TotalCents        int64     `json:"total_cents"`
	ItemCount         int       `json:"item_count"`
	EstimatedDelivery time.Time `json:"estimated_delivery"`
}
