package repositories

import (
	"context"
	"errors"

	"github.com/payetonkawa/orders-api/internal/domain"
)

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// OrderRepository persists order documents.
//
// List returns orders in whatever order the store yields them; no sort is
// guaranteed. UpdateFields applies only the supplied subset of fields and
// reports not-found for an absent document. Delete of an absent document is a
// no-op; callers wanting strict semantics check existence first.
type OrderRepository interface {
	List(ctx context.Context) ([]domain.Order, error)
	FindByID(ctx context.Context, orderID string) (domain.Order, error)
	Insert(ctx context.Context, order domain.Order) (string, error)
	UpdateFields(ctx context.Context, orderID string, fields map[string]any) error
	Delete(ctx context.Context, orderID string) error
	FindByClient(ctx context.Context, clientID string) ([]domain.Order, error)
	DeleteAll(ctx context.Context, orders []domain.Order) (int, error)
}

// IsNotFound reports whether err carries not-found repository semantics.
func IsNotFound(err error) bool {
	var repoErr RepositoryError
	if errors.As(err, &repoErr) {
		return repoErr.IsNotFound()
	}
	return false
}
