package domain

// Statuses stamped or commonly applied during the order lifecycle. The update
// and confirmation paths accept caller-supplied values beyond this set on
// purpose; downstream services own the vocabulary of their own transitions.
const (
	OrderStatusPendingConfirmation = "En attente de confirmation"
	OrderStatusInProgress          = "En cours"
	OrderStatusConfirmed           = "Confirmée"
	OrderStatusDelivered           = "Livrée"
)

// Order is the persisted record representing a purchase request. The document
// id is assigned by the store at creation and never reused; every other field
// except status and price is immutable afterwards.
type Order struct {
	ID        string  `json:"id" firestore:"-"`
	Date      string  `json:"date" firestore:"date"`
	ProductID string  `json:"id_produit" firestore:"id_produit"`
	ClientID  string  `json:"id_client" firestore:"id_client"`
	Quantity  float64 `json:"quantity" firestore:"quantity"`
	Price     float64 `json:"price" firestore:"price"`
	Status    string  `json:"status" firestore:"status"`
}
