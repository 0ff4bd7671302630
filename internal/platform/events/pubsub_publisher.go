// Package events publishes order notifications to Cloud Pub/Sub for the other
// services of the platform (products, clients).
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/pubsub"

	"github.com/payetonkawa/orders-api/internal/services"
)

// PubSubOrderPublisher publishes order notifications to a Pub/Sub topic.
type PubSubOrderPublisher struct {
	topic   *pubsub.Topic
	marshal func(any) ([]byte, error)
}

// NewPubSubOrderPublisher constructs a Pub/Sub backed order publisher.
func NewPubSubOrderPublisher(topic *pubsub.Topic) (*PubSubOrderPublisher, error) {
	if topic == nil {
		return nil, errors.New("pubsub order publisher: topic is required")
	}
	return &PubSubOrderPublisher{
		topic:   topic,
		marshal: json.Marshal,
	}, nil
}

// PublishOrderCreated enqueues an order-created message on the configured topic.
func (p *PubSubOrderPublisher) PublishOrderCreated(ctx context.Context, message services.OrderCreatedMessage) (string, error) {
	if p == nil || p.topic == nil {
		return "", errors.New("pubsub order publisher: not initialised")
	}

	data, err := p.marshal(message)
	if err != nil {
		return "", fmt.Errorf("marshal order created message: %w", err)
	}

	attrs := make(map[string]string)
	setAttr(attrs, "action", "ORDER_CREATED")
	setAttr(attrs, "orderId", message.OrderID)
	setAttr(attrs, "id_produit", message.ProductID)

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attrs,
	})

	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish order created message: %w", err)
	}
	return id, nil
}

func setAttr(attrs map[string]string, key string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		attrs[key] = v
	}
}
