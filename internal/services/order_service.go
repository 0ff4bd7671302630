package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/payetonkawa/orders-api/internal/domain"
	"github.com/payetonkawa/orders-api/internal/platform/observability"
	"github.com/payetonkawa/orders-api/internal/repositories"
)

// ErrOrderNotFound indicates the referenced order has no matching record.
var ErrOrderNotFound = errors.New("order: not found")

// OrderServiceDeps bundles collaborators required to construct the order service.
type OrderServiceDeps struct {
	Orders    repositories.OrderRepository
	Validator *OrderValidator
	// Events is optional; creation notifications are fire-and-forget relative
	// to the synchronous result.
	Events OrderEventPublisher
}

type orderService struct {
	orders    repositories.OrderRepository
	validator *OrderValidator
	events    OrderEventPublisher
}

// NewOrderService wires dependencies into a concrete OrderService implementation.
func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Orders == nil {
		return nil, errors.New("order service: order repository is required")
	}
	validator := deps.Validator
	if validator == nil {
		validator = NewOrderValidator()
	}
	return &orderService{
		orders:    deps.Orders,
		validator: validator,
		events:    deps.Events,
	}, nil
}

func (s *orderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return domain.Order{}, ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("get order %s: %w", orderID, err)
	}
	return order, nil
}

func (s *orderService) CreateOrder(ctx context.Context, payload map[string]any) (string, error) {
	order, err := s.validator.ValidateCreate(payload)
	if err != nil {
		return "", err
	}

	id, err := s.orders.Insert(ctx, order)
	if err != nil {
		return "", fmt.Errorf("insert order: %w", err)
	}

	if s.events != nil {
		if _, err := s.events.PublishOrderCreated(ctx, OrderCreatedMessage{
			OrderID:   id,
			ProductID: order.ProductID,
			Quantity:  order.Quantity,
		}); err != nil {
			observability.FromContext(ctx).Warn("order created notification failed",
				zap.String("order_id", id),
				zap.Error(err),
			)
		}
	}

	return id, nil
}

func (s *orderService) UpdateOrder(ctx context.Context, orderID string, payload map[string]any) error {
	fields, err := s.validator.AuthorizeUpdate(orderID, payload)
	if err != nil {
		return err
	}

	if _, err := s.orders.FindByID(ctx, orderID); err != nil {
		if repositories.IsNotFound(err) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("load order %s: %w", orderID, err)
	}

	// A concurrent delete between the check and the write surfaces as
	// not-found here; the race is accepted rather than locked out.
	if err := s.orders.UpdateFields(ctx, orderID, fields); err != nil {
		if repositories.IsNotFound(err) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("update order %s: %w", orderID, err)
	}
	return nil
}

func (s *orderService) DeleteOrder(ctx context.Context, orderID string) error {
	if _, err := s.orders.FindByID(ctx, orderID); err != nil {
		if repositories.IsNotFound(err) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("load order %s: %w", orderID, err)
	}

	if err := s.orders.Delete(ctx, orderID); err != nil {
		if repositories.IsNotFound(err) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("delete order %s: %w", orderID, err)
	}
	return nil
}
