package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/payetonkawa/orders-api/internal/platform/observability"
	"github.com/payetonkawa/orders-api/internal/repositories"
)

// Actions dispatched by the event consumer.
const (
	ActionDeleteClient      = "DELETE_CLIENT"
	ActionOrderConfirmation = "ORDER_CONFIRMATION"
)

var (
	// ErrUnknownEventAction indicates the event discriminator matched no handler.
	ErrUnknownEventAction = errors.New("event: action not recognized")
	// ErrEventInvalid indicates the event payload is missing required fields.
	ErrEventInvalid = errors.New("event: invalid payload")
)

type eventConsumer struct {
	orders repositories.OrderRepository
}

// NewEventConsumer builds the dispatcher applying side-effecting updates in
// reaction to out-of-band events. Each handler is idempotent or best-effort:
// re-delivering an event is always safe.
func NewEventConsumer(orders repositories.OrderRepository) (EventConsumer, error) {
	if orders == nil {
		return nil, errors.New("event consumer: order repository is required")
	}
	return &eventConsumer{orders: orders}, nil
}

// HandleEvent dispatches on the action discriminator. The outcome carries the
// identifying fields even on failure so reporting stays scoped to the event.
func (c *eventConsumer) HandleEvent(ctx context.Context, event OrderEvent) (EventOutcome, error) {
	outcome := EventOutcome{
		Action:   event.Action,
		ClientID: event.ClientID,
		OrderID:  event.OrderID,
	}

	switch event.Action {
	case ActionDeleteClient:
		deleted, err := c.deleteClientOrders(ctx, event.ClientID)
		outcome.OrdersDeleted = deleted
		return outcome, err
	case ActionOrderConfirmation:
		return outcome, c.confirmOrder(ctx, event)
	default:
		return outcome, fmt.Errorf("%w: %s", ErrUnknownEventAction, event.Action)
	}
}

// deleteClientOrders removes every order owned by the client as one
// best-effort batch. Zero matches is a successful no-op, which makes the
// operation idempotent under redelivery.
func (c *eventConsumer) deleteClientOrders(ctx context.Context, clientID string) (int, error) {
	if clientID == "" {
		return 0, fmt.Errorf("%w: clientId is required for %s", ErrEventInvalid, ActionDeleteClient)
	}

	orders, err := c.orders.FindByClient(ctx, clientID)
	if err != nil {
		return 0, fmt.Errorf("find orders for client %s: %w", clientID, err)
	}
	if len(orders) == 0 {
		return 0, nil
	}

	deleted, err := c.orders.DeleteAll(ctx, orders)
	if err != nil {
		return 0, fmt.Errorf("delete orders for client %s: %w", clientID, err)
	}

	observability.FromContext(ctx).Info("client orders deleted",
		zap.String("client_id", clientID),
		zap.Int("orders_deleted", deleted),
	)
	return deleted, nil
}

// confirmOrder applies the confirmation status, and the price when supplied.
// An absent price deliberately resets the stored price to zero; downstream
// consumers depend on that default.
func (c *eventConsumer) confirmOrder(ctx context.Context, event OrderEvent) error {
	if event.OrderID == "" {
		return fmt.Errorf("%w: orderId is required for %s", ErrEventInvalid, ActionOrderConfirmation)
	}

	if _, err := c.orders.FindByID(ctx, event.OrderID); err != nil {
		if repositories.IsNotFound(err) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("load order %s: %w", event.OrderID, err)
	}

	price := 0.0
	if event.Price != nil {
		price = *event.Price
	}

	fields := map[string]any{
		fieldStatus: event.Status,
		fieldPrice:  price,
	}
	if err := c.orders.UpdateFields(ctx, event.OrderID, fields); err != nil {
		if repositories.IsNotFound(err) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("confirm order %s: %w", event.OrderID, err)
	}

	observability.FromContext(ctx).Info("order confirmation applied",
		zap.String("order_id", event.OrderID),
		zap.String("status", event.Status),
		zap.Float64("price", price),
	)
	return nil
}
