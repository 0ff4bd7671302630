package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/payetonkawa/orders-api/internal/platform/httpx"
	"github.com/payetonkawa/orders-api/internal/platform/observability"
	"github.com/payetonkawa/orders-api/internal/services"
)

const maxPushBodySize = 256 * 1024

const (
	msgInvalidEnvelope = "Message Pub/Sub invalide"
	msgInvalidEvent    = "Événement invalide"
	msgUnknownAction   = "Action non reconnue : %s"
	errDeleteClient    = "Erreur lors de la suppression des commandes du client %s : %v"
	errConfirmOrder    = "Erreur lors de la confirmation de la commande %s : %v"
)

// pushEnvelope is the Pub/Sub push delivery wrapper: the actual event payload
// travels base64-encoded in message.data.
type pushEnvelope struct {
	Message struct {
		Data      string `json:"data"`
		MessageID string `json:"messageId"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// PubSubHandlers exposes the event webhook applying side-effecting updates to
// orders in reaction to external events.
type PubSubHandlers struct {
	consumer services.EventConsumer
}

// NewPubSubHandlers constructs a new PubSubHandlers instance.
func NewPubSubHandlers(consumer services.EventConsumer) *PubSubHandlers {
	return &PubSubHandlers{consumer: consumer}
}

// Routes registers the event endpoint under the orders group.
func (h *PubSubHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/pubsub", h.handlePush)
}

func (h *PubSubHandlers) handlePush(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.FromContext(ctx)

	event, ok := decodeEnvelope(w, r)
	if !ok {
		return
	}

	outcome, err := h.consumer.HandleEvent(ctx, event)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownEventAction):
			httpx.WriteText(w, http.StatusBadRequest, fmt.Sprintf(msgUnknownAction, event.Action))
		case errors.Is(err, services.ErrEventInvalid):
			httpx.WriteText(w, http.StatusBadRequest, msgInvalidEvent)
		case errors.Is(err, services.ErrOrderNotFound):
			httpx.WriteText(w, http.StatusNotFound, msgOrderNotFound+" : "+outcome.OrderID)
		default:
			logger.Error("event handling failed",
				zap.String("action", outcome.Action),
				zap.Error(err),
			)
			switch outcome.Action {
			case services.ActionDeleteClient:
				httpx.WriteText(w, http.StatusInternalServerError, fmt.Sprintf(errDeleteClient, outcome.ClientID, err))
			default:
				httpx.WriteText(w, http.StatusInternalServerError, fmt.Sprintf(errConfirmOrder, outcome.OrderID, err))
			}
		}
		return
	}

	switch outcome.Action {
	case services.ActionDeleteClient:
		httpx.WriteText(w, http.StatusOK, fmt.Sprintf("Commandes du client %s supprimées : %d", outcome.ClientID, outcome.OrdersDeleted))
	default:
		httpx.WriteText(w, http.StatusOK, fmt.Sprintf("Commande %s mise à jour", outcome.OrderID))
	}
}

// decodeEnvelope unwraps the push envelope and decodes the inner event. Any
// failure before dispatch (malformed JSON, bad base64, missing payload or
// action) is a bad envelope.
func decodeEnvelope(w http.ResponseWriter, r *http.Request) (services.OrderEvent, bool) {
	defer func() {
		_ = r.Body.Close()
	}()

	var envelope pushEnvelope
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPushBodySize))
	if err := decoder.Decode(&envelope); err != nil {
		httpx.WriteText(w, http.StatusBadRequest, msgInvalidEnvelope)
		return services.OrderEvent{}, false
	}
	if envelope.Message.Data == "" {
		httpx.WriteText(w, http.StatusBadRequest, msgInvalidEnvelope)
		return services.OrderEvent{}, false
	}

	raw, err := base64.StdEncoding.DecodeString(envelope.Message.Data)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(envelope.Message.Data)
	}
	if err != nil {
		httpx.WriteText(w, http.StatusBadRequest, msgInvalidEnvelope)
		return services.OrderEvent{}, false
	}

	var event services.OrderEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		httpx.WriteText(w, http.StatusBadRequest, msgInvalidEnvelope)
		return services.OrderEvent{}, false
	}
	if event.Action == "" {
		httpx.WriteText(w, http.StatusBadRequest, msgInvalidEnvelope)
		return services.OrderEvent{}, false
	}
	return event, true
}
