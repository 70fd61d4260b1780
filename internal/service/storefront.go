package service

import (
	"context"
	"time"

	"sandwich-shop-service/internal/models"

	"github.com/google/uuid"
)

// gracePeriod tolerates clock skew and carts already in flight when the
// pickup deadline passes.
const gracePeriod = 10 * time.Minute

// ReserveItem is one ledger mutation: quantity units against one drop product.
type ReserveItem struct {
	DropProductID uuid.UUID
	Quantity      int32
}

type CreateOrderInput struct {
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	PickupTime    string
	// PickupDate is the drop date the storefront rendered ("2006-01-02").
	// When set it must match the active drop: a stale checkout page from a
	// previous drop must not place orders against the current one.
	PickupDate   string
	Instructions string
	Items        []ReserveItem
	// TotalCents is the client-computed total; it is cross-checked against the
	// ledger's price snapshots and the server total always wins.
	TotalCents      int64
	PaymentIntentID *string
}

// PaymentIntentInfo is the typed projection of a Stripe payment intent the
// webhook reconciliation works with.
type PaymentIntentInfo struct {
	ID             string
	AmountCents    int64
	DropID         uuid.UUID
	CustomerName   string
	CustomerEmail  string
	CustomerPhone  string
	PickupTime     string
	Items          []ReserveItem
	FailureMessage string
}

type MenuItemInput struct {
	ProductID         uuid.UUID
	StockQuantity     int32
	SellingPriceCents int64
}

type CreateDropInput struct {
	Date           time.Time
	LocationID     uuid.UUID
	PickupDeadline time.Time
}

type DropListFilter struct {
	Status *models.DropStatus
	Limit  int
	Offset int
}

type InventoryService interface {
	// ReserveMultiple reserves every item or none of them.
	ReserveMultiple(ctx context.Context, items []ReserveItem) error
	// ReleaseMultiple undoes reservations, floored at zero per item.
	ReleaseMultiple(ctx context.Context, items []ReserveItem) error
}

type OrderService interface {
	CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetOrderByPaymentIntent(ctx context.Context, paymentIntentID string) (*models.Order, error)
	ListOrders(ctx context.Context, dropID *uuid.UUID, status *models.OrderStatus, limit, offset int) ([]*models.Order, int64, error)
}

type PaymentService interface {
	HandlePaymentSucceeded(ctx context.Context, eventID string, intent PaymentIntentInfo) (*models.Order, error)
	HandlePaymentFailed(ctx context.Context, eventID string, intent PaymentIntentInfo) error
}

type MenuService interface {
	GetDropMenu(ctx context.Context, dropID uuid.UUID) (*models.Drop, []models.DropProduct, error)
	ReplaceDropMenu(ctx context.Context, dropID uuid.UUID, items []MenuItemInput) ([]models.DropProduct, error)
}

type DropService interface {
	CreateLocation(ctx context.Context, name, address string) (*models.Location, error)
	ListLocations(ctx context.Context) ([]models.Location, error)
	CreateDrop(ctx context.Context, in CreateDropInput) (*models.Drop, error)
	ActivateDrop(ctx context.Context, id uuid.UUID) (*models.Drop, error)
	CompleteDrop(ctx context.Context, id uuid.UUID) (*models.Drop, error)
	CancelDrop(ctx context.Context, id uuid.UUID) (*models.Drop, error)
	GetActiveDrop(ctx context.Context) (*models.Drop, []models.DropProduct, error)
	ListDrops(ctx context.Context, f DropListFilter) ([]models.Drop, int64, error)
}

// EventDeduper is the at-least-once delivery guard: FirstDelivery reports
// whether this event ID has not been seen before. Forget gives the claim
// back when processing fails, so the next delivery is treated as first.
type EventDeduper interface {
	FirstDelivery(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}
