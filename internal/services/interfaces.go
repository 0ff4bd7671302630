package services

import (
	"context"

	"github.com/payetonkawa/orders-api/internal/domain"
)

// OrderService orchestrates order CRUD against the store, applying validation
// and authorization decisions before any mutation.
type OrderService interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
	CreateOrder(ctx context.Context, payload map[string]any) (string, error)
	UpdateOrder(ctx context.Context, orderID string, payload map[string]any) error
	DeleteOrder(ctx context.Context, orderID string) error
}

// OrderCreatedMessage carries the notification emitted after a creation.
type OrderCreatedMessage struct {
	OrderID   string  `json:"orderId"`
	ProductID string  `json:"id_produit"`
	Quantity  float64 `json:"quantity"`
}

// OrderEventPublisher publishes order notifications for downstream consumers.
type OrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, message OrderCreatedMessage) (string, error)
}

// OrderEvent is a decoded inbound event payload, independent of the transport
// envelope it arrived in.
type OrderEvent struct {
	Action   string   `json:"action"`
	ClientID string   `json:"clientId"`
	OrderID  string   `json:"orderId"`
	Status   string   `json:"status"`
	Price    *float64 `json:"price,omitempty"`
}

// EventOutcome reports what an event handler did. The identifying fields are
// populated even when the handler fails so callers can scope their reporting.
type EventOutcome struct {
	Action        string
	ClientID      string
	OrderID       string
	OrdersDeleted int
}

// EventConsumer dispatches decoded events to the matching side-effecting handler.
type EventConsumer interface {
	HandleEvent(ctx context.Context, event OrderEvent) (EventOutcome, error)
}
