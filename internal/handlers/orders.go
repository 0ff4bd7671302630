package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/payetonkawa/orders-api/internal/domain"
	"github.com/payetonkawa/orders-api/internal/platform/auth"
	"github.com/payetonkawa/orders-api/internal/platform/httpx"
	"github.com/payetonkawa/orders-api/internal/platform/observability"
	"github.com/payetonkawa/orders-api/internal/services"
)

const maxOrderBodySize = 64 * 1024

// Confirmation and error sentences returned by the CRUD surface. These are
// kept byte-for-byte compatible with the responses existing consumers parse.
const (
	msgOrderCreated   = "Commande créée avec son ID : "
	msgOrderUpdated   = "Commande mise à jour"
	msgOrderDeleted   = "Commande supprimée"
	msgOrderNotFound  = "Commande non trouvée"
	msgInvalidJSON    = "Le corps de la requête doit être un JSON valide."
	errListOrders     = "Erreur lors de la récupération des commandes : %v"
	errGetOrder       = "Erreur lors de la récupération de la commande par ID : %v"
	errCreateOrder    = "Erreur lors de la création de la commande : %v"
	errUpdateOrder    = "Erreur lors de la mise à jour de la commande : %v"
	errDeleteOrder    = "Erreur lors de la suppression de la commande : %v"
)

// OrderHandlers exposes the order CRUD endpoints.
type OrderHandlers struct {
	authn  *auth.APIKeyAuthenticator
	orders services.OrderService
}

// NewOrderHandlers constructs a new OrderHandlers instance.
func NewOrderHandlers(authn *auth.APIKeyAuthenticator, orders services.OrderService) *OrderHandlers {
	return &OrderHandlers{
		authn:  authn,
		orders: orders,
	}
}

// Routes registers the /orders endpoints. List, update, and delete sit behind
// the API key; fetching one order and creating one do not.
func (h *OrderHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}

	guard := func(next http.Handler) http.Handler { return next }
	if h.authn != nil {
		guard = h.authn.RequireAPIKey()
	}

	r.With(guard).Get("/", h.listOrders)
	r.Post("/", h.createOrder)
	r.Get("/{orderID}", h.getOrder)
	r.With(guard).Put("/{orderID}", h.updateOrder)
	r.With(guard).Delete("/{orderID}", h.deleteOrder)
}

func (h *OrderHandlers) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orders, err := h.orders.ListOrders(ctx)
	if err != nil {
		writeOrderError(ctx, w, err, errListOrders)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	httpx.WriteJSON(w, http.StatusOK, orders)
}

func (h *OrderHandlers) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))

	order, err := h.orders.GetOrder(ctx, orderID)
	if err != nil {
		writeOrderError(ctx, w, err, errGetOrder)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, order)
}

func (h *OrderHandlers) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payload, ok := decodeBody(w, r)
	if !ok {
		return
	}

	id, err := h.orders.CreateOrder(ctx, payload)
	if err != nil {
		writeOrderError(ctx, w, err, errCreateOrder)
		return
	}
	httpx.WriteText(w, http.StatusCreated, msgOrderCreated+id)
}

func (h *OrderHandlers) updateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))

	payload, ok := decodeBody(w, r)
	if !ok {
		return
	}

	if err := h.orders.UpdateOrder(ctx, orderID, payload); err != nil {
		writeOrderError(ctx, w, err, errUpdateOrder)
		return
	}
	httpx.WriteText(w, http.StatusOK, msgOrderUpdated)
}

func (h *OrderHandlers) deleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))

	if err := h.orders.DeleteOrder(ctx, orderID); err != nil {
		writeOrderError(ctx, w, err, errDeleteOrder)
		return
	}
	httpx.WriteText(w, http.StatusOK, msgOrderDeleted)
}

func decodeBody(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	defer func() {
		_ = r.Body.Close()
	}()

	var payload map[string]any
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxOrderBodySize))
	if err := decoder.Decode(&payload); err != nil {
		httpx.WriteText(w, http.StatusBadRequest, msgInvalidJSON)
		return nil, false
	}
	return payload, true
}

func writeOrderError(ctx context.Context, w http.ResponseWriter, err error, backendFormat string) {
	var validationErr *services.ValidationError
	var authorizationErr *services.AuthorizationError

	switch {
	case errors.As(err, &validationErr):
		httpx.WriteText(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &authorizationErr):
		httpx.WriteText(w, http.StatusBadRequest, authorizationErr.Error())
	case errors.Is(err, services.ErrOrderNotFound):
		httpx.WriteText(w, http.StatusNotFound, msgOrderNotFound)
	default:
		observability.FromContext(ctx).Error("order operation failed", zap.Error(err))
		httpx.WriteText(w, http.StatusInternalServerError, fmt.Sprintf(backendFormat, err))
	}
}
