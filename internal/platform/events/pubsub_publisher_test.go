package events

import (
	"context"
	"encoding/json"
	"testing"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/payetonkawa/orders-api/internal/services"
)

func newTestTopic(t *testing.T) (*pubsub.Topic, *pstest.Server) {
	t.Helper()

	ctx := context.Background()
	srv := pstest.NewServer()
	t.Cleanup(func() {
		_ = srv.Close()
	})

	client, err := pubsub.NewClient(ctx, "test-project",
		option.WithEndpoint(srv.Addr),
		option.WithoutAuthentication(),
		option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	)
	if err != nil {
		t.Fatalf("pubsub.NewClient: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})

	topic, err := client.CreateTopic(ctx, "order-created")
	if err != nil {
		t.Fatalf("CreateTopic: %v", err)
	}
	return topic, srv
}

func TestPubSubOrderPublisherPublishesMessage(t *testing.T) {
	ctx := context.Background()
	topic, srv := newTestTopic(t)

	publisher, err := NewPubSubOrderPublisher(topic)
	if err != nil {
		t.Fatalf("NewPubSubOrderPublisher: %v", err)
	}

	msg := services.OrderCreatedMessage{
		OrderID:   "ord_test",
		ProductID: "prod123",
		Quantity:  2,
	}

	id, err := publisher.PublishOrderCreated(ctx, msg)
	if err != nil {
		t.Fatalf("PublishOrderCreated: %v", err)
	}
	if id == "" {
		t.Fatalf("expected server-assigned message id")
	}

	messages := srv.Messages()
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}

	var payload services.OrderCreatedMessage
	if err := json.Unmarshal(messages[0].Data, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.OrderID != msg.OrderID || payload.ProductID != msg.ProductID || payload.Quantity != msg.Quantity {
		t.Fatalf("unexpected payload %#v", payload)
	}
	if attr := messages[0].Attributes["action"]; attr != "ORDER_CREATED" {
		t.Fatalf("expected action attribute, got %q", attr)
	}
	if attr := messages[0].Attributes["orderId"]; attr != "ord_test" {
		t.Fatalf("expected orderId attribute, got %q", attr)
	}
	if attr := messages[0].Attributes["id_produit"]; attr != "prod123" {
		t.Fatalf("expected id_produit attribute, got %q", attr)
	}
}

func TestPubSubOrderPublisherSkipsEmptyAttributes(t *testing.T) {
	topic, srv := newTestTopic(t)

	publisher, err := NewPubSubOrderPublisher(topic)
	if err != nil {
		t.Fatalf("NewPubSubOrderPublisher: %v", err)
	}

	if _, err := publisher.PublishOrderCreated(context.Background(), services.OrderCreatedMessage{Quantity: 1}); err != nil {
		t.Fatalf("PublishOrderCreated: %v", err)
	}

	messages := srv.Messages()
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
	attrs := messages[0].Attributes
	if _, ok := attrs["orderId"]; ok {
		t.Fatalf("empty orderId should not be an attribute")
	}
	if _, ok := attrs["id_produit"]; ok {
		t.Fatalf("empty id_produit should not be an attribute")
	}
	if attrs["action"] != "ORDER_CREATED" {
		t.Fatalf("action attribute missing, got %#v", attrs)
	}
}

func TestPubSubOrderPublisherRequiresTopic(t *testing.T) {
	if _, err := NewPubSubOrderPublisher(nil); err == nil {
		t.Fatalf("expected error for nil topic")
	}
}
