package services

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/payetonkawa/orders-api/internal/domain"
)

// Error messages are French sentences kept byte-for-byte compatible with the
// responses existing consumers already parse.
const (
	msgRequiredFields   = "Tous les champs date, id_produit, id_client, quantity et price sont obligatoires."
	msgDateFormat       = "Le champ date doit être une date valide au format YYYY-MM-DD."
	msgIdentifierFormat = "Les champs id_produit et id_client doivent contenir uniquement des lettres et des chiffres."
	msgQuantityPositive = "Le champ quantity doit être un nombre positif."
	msgPricePositive    = "Le champ price doit être un nombre positif."
	msgImmutableID      = "Le champ id ne peut pas être modifié."
	msgNothingToUpdate  = "Au moins un des champs status ou price doit être fourni."
)

const (
	fieldDate     = "date"
	fieldProduct  = "id_produit"
	fieldClient   = "id_client"
	fieldQuantity = "quantity"
	fieldPrice    = "price"
	fieldStatus   = "status"
	fieldID       = "id"
)

// Identifier and date shapes. The identifier pattern only admits letters,
// digits, spaces, apostrophes, and hyphens, which rejects injection-style
// payloads outright. The date pattern checks shape only, not calendar
// validity.
const (
	defaultIdentifierPattern = `^[a-zA-Z0-9\s'-]+$`
	defaultDatePattern       = `^\d{4}-\d{2}-\d{2}$`
)

// ValidationError is a creation-payload rejection. Its message is returned
// verbatim to the caller.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func newValidationError(msg string) *ValidationError {
	return &ValidationError{msg: msg}
}

// AuthorizationError is an update-payload rejection. Its message is returned
// verbatim to the caller.
type AuthorizationError struct {
	msg string
}

func (e *AuthorizationError) Error() string { return e.msg }

func newAuthorizationError(msg string) *AuthorizationError {
	return &AuthorizationError{msg: msg}
}

// OrderValidator checks creation payloads and authorizes update payloads.
// All rules are bound at construction; the validator holds no mutable state
// and is safe for concurrent use.
type OrderValidator struct {
	identifierPattern *regexp.Regexp
	datePattern       *regexp.Regexp
	initialStatus     string
}

// ValidatorOption customises the validator configuration.
type ValidatorOption func(*OrderValidator)

// WithInitialStatus overrides the status stamped on valid creation payloads.
func WithInitialStatus(status string) ValidatorOption {
	return func(v *OrderValidator) {
		if strings.TrimSpace(status) != "" {
			v.initialStatus = status
		}
	}
}

// NewOrderValidator constructs a validator with the default rule set.
func NewOrderValidator(opts ...ValidatorOption) *OrderValidator {
	v := &OrderValidator{
		identifierPattern: regexp.MustCompile(defaultIdentifierPattern),
		datePattern:       regexp.MustCompile(defaultDatePattern),
		initialStatus:     domain.OrderStatusPendingConfirmation,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// creationFields is the whitelist of fields a creation payload may carry.
// Price is required at creation; the confirmation path may overwrite it later.
var creationFields = map[string]struct{}{
	fieldDate:     {},
	fieldProduct:  {},
	fieldClient:   {},
	fieldQuantity: {},
	fieldPrice:    {},
}

// mutableFields is the whitelist of fields an update payload may carry.
var mutableFields = map[string]struct{}{
	fieldStatus: {},
	fieldPrice:  {},
}

// ValidateCreate checks a creation payload and returns the normalized order,
// stamped with the initial status. Checks short-circuit on the first failure.
func (v *OrderValidator) ValidateCreate(payload map[string]any) (domain.Order, error) {
	if unknown := unknownKeys(payload, creationFields, nil); len(unknown) > 0 {
		return domain.Order{}, newValidationError(fmt.Sprintf("Les champs suivants ne sont pas autorisés : %s.", strings.Join(unknown, ", ")))
	}

	for _, field := range []string{fieldDate, fieldProduct, fieldClient, fieldQuantity, fieldPrice} {
		if isFalsy(payload[field]) {
			return domain.Order{}, newValidationError(msgRequiredFields)
		}
	}

	date, ok := payload[fieldDate].(string)
	if !ok || !v.datePattern.MatchString(date) {
		return domain.Order{}, newValidationError(msgDateFormat)
	}

	productID, okProduct := payload[fieldProduct].(string)
	clientID, okClient := payload[fieldClient].(string)
	if !okProduct || !okClient || !v.identifierPattern.MatchString(productID) || !v.identifierPattern.MatchString(clientID) {
		return domain.Order{}, newValidationError(msgIdentifierFormat)
	}

	quantity, ok := payload[fieldQuantity].(float64)
	if !ok || quantity <= 0 {
		return domain.Order{}, newValidationError(msgQuantityPositive)
	}

	price, ok := payload[fieldPrice].(float64)
	if !ok || price <= 0 {
		return domain.Order{}, newValidationError(msgPricePositive)
	}

	return domain.Order{
		Date:      date,
		ProductID: productID,
		ClientID:  clientID,
		Quantity:  quantity,
		Price:     price,
		Status:    v.initialStatus,
	}, nil
}

// AuthorizeUpdate checks an update payload against the path-supplied order id
// and returns the subset of fields to apply. Field values are not validated
// beyond presence; any value under status or price is accepted at this layer.
func (v *OrderValidator) AuthorizeUpdate(orderID string, payload map[string]any) (map[string]any, error) {
	if raw, ok := payload[fieldID]; ok {
		id, isString := raw.(string)
		if !isString || id != orderID {
			return nil, newAuthorizationError(msgImmutableID)
		}
	}

	// The id key is tolerated when it matches the path identifier.
	if unknown := unknownKeys(payload, mutableFields, map[string]struct{}{fieldID: {}}); len(unknown) > 0 {
		return nil, newAuthorizationError(fmt.Sprintf("Seuls les champs status et price peuvent être mis à jour. Champs non autorisés : %s.", strings.Join(unknown, ", ")))
	}

	fields := make(map[string]any, 2)
	if value, ok := payload[fieldStatus]; ok {
		fields[fieldStatus] = value
	}
	if value, ok := payload[fieldPrice]; ok {
		fields[fieldPrice] = value
	}
	if len(fields) == 0 {
		return nil, newAuthorizationError(msgNothingToUpdate)
	}
	return fields, nil
}

func unknownKeys(payload map[string]any, allowed map[string]struct{}, tolerated map[string]struct{}) []string {
	var unknown []string
	for key := range payload {
		if _, ok := allowed[key]; ok {
			continue
		}
		if _, ok := tolerated[key]; ok {
			continue
		}
		unknown = append(unknown, key)
	}
	sort.Strings(unknown)
	return unknown
}

// isFalsy mirrors the permissive truthiness the historical service applied to
// required fields: nil, empty string, zero, and false all count as missing.
func isFalsy(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case float64:
		return v == 0
	case bool:
		return !v
	}
	return false
}
