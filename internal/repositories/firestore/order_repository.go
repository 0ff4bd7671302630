package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/oklog/ulid/v2"

	"github.com/payetonkawa/orders-api/internal/domain"
	pfirestore "github.com/payetonkawa/orders-api/internal/platform/firestore"
)

const (
	defaultOrdersCollection = "orders"
	orderIDPrefix           = "ord_"
)

// OrderRepository is the Firestore implementation of repositories.OrderRepository.
type OrderRepository struct {
	base  *pfirestore.BaseRepository[domain.Order]
	newID func() string
}

// OrderRepositoryOption customises the repository behaviour.
type OrderRepositoryOption func(*OrderRepository)

// WithOrderIDGenerator overrides the document id generator used on insert.
func WithOrderIDGenerator(generator func() string) OrderRepositoryOption {
	return func(r *OrderRepository) {
		if generator != nil {
			r.newID = generator
		}
	}
}

// NewOrderRepository constructs a Firestore-backed order repository.
func NewOrderRepository(provider *pfirestore.Provider, collection string, opts ...OrderRepositoryOption) (*OrderRepository, error) {
	if provider == nil {
		return nil, errors.New("order repository: firestore provider is required")
	}
	collection = strings.TrimSpace(collection)
	if collection == "" {
		collection = defaultOrdersCollection
	}

	repo := &OrderRepository{
		base: pfirestore.NewBaseRepository[domain.Order](provider, collection, nil),
		newID: func() string {
			return orderIDPrefix + ulid.Make().String()
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(repo)
		}
	}
	return repo, nil
}

// List returns every stored order.
func (r *OrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	docs, err := r.base.Query(ctx, nil)
	if err != nil {
		return nil, err
	}
	return ordersFromDocuments(docs), nil
}

// FindByID fetches one order by document id.
func (r *OrderRepository) FindByID(ctx context.Context, orderID string) (domain.Order, error) {
	doc, err := r.base.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	order := doc.Data
	order.ID = doc.ID
	return order, nil
}

// Insert stores a new order under a generated document id and returns the id.
func (r *OrderRepository) Insert(ctx context.Context, order domain.Order) (string, error) {
	id := r.newID()
	order.ID = ""
	if err := r.base.Set(ctx, id, order); err != nil {
		return "", err
	}
	return id, nil
}

// UpdateFields applies a partial update containing only the supplied fields.
func (r *OrderRepository) UpdateFields(ctx context.Context, orderID string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	updates := make([]firestore.Update, 0, len(fields))
	for name, value := range fields {
		updates = append(updates, firestore.Update{Path: name, Value: value})
	}
	return r.base.Update(ctx, orderID, updates)
}

// Delete removes one order by document id.
func (r *OrderRepository) Delete(ctx context.Context, orderID string) error {
	return r.base.Delete(ctx, orderID)
}

// FindByClient returns every order whose id_client matches.
func (r *OrderRepository) FindByClient(ctx context.Context, clientID string) ([]domain.Order, error) {
	docs, err := r.base.Query(ctx, func(query firestore.Query) firestore.Query {
		return query.Where("id_client", "==", clientID)
	})
	if err != nil {
		return nil, err
	}
	return ordersFromDocuments(docs), nil
}

// DeleteAll removes the given orders in a single best-effort write batch.
func (r *OrderRepository) DeleteAll(ctx context.Context, orders []domain.Order) (int, error) {
	ids := make([]string, 0, len(orders))
	for _, order := range orders {
		ids = append(ids, order.ID)
	}
	return r.base.DeleteBatch(ctx, ids)
}

func ordersFromDocuments(docs []pfirestore.Document[domain.Order]) []domain.Order {
	orders := make([]domain.Order, 0, len(docs))
	for _, doc := range docs {
		order := doc.Data
		order.ID = doc.ID
		orders = append(orders, order)
	}
	return orders
}
