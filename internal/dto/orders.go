package dto

import (
	"time"

	"sandwich-shop-service/internal/models"

	"github.com/google/uuid"
)

type CartItemRequest struct {
	ID       uuid.UUID `json:"id" binding:"required"`
	Quantity int32     `json:"quantity" binding:"required,gt=0"`
}

// CreateOrderRequest mirrors the storefront checkout payload. totalAmount is
// in cents and advisory only; the server reprices from the ledger.
type CreateOrderRequest struct {
	CustomerName        string            `json:"customerName" binding:"required"`
	CustomerEmail       string            `json:"customerEmail" binding:"required,email"`
	CustomerPhone       string            `json:"customerPhone"`
	PickupTime          string            `json:"pickupTime" binding:"required"`
	PickupDate          string            `json:"pickupDate"`
	Items               []CartItemRequest `json:"items" binding:"required,min=1,dive"`
	SpecialInstructions string            `json:"specialInstructions"`
	TotalAmount         int64             `json:"totalAmount"`
	PaymentIntentID     *string           `json:"paymentIntentId"`
}

type OrderSummary struct {
	ID          uuid.UUID `json:"id"`
	OrderNumber string    `json:"order_number"`
	PublicCode  string    `json:"public_code"`
	Status      string    `json:"status"`
}

type CreateOrderResponse struct {
	Success bool         `json:"success"`
	Order   OrderSummary `json:"order"`
}

type OrderLineResponse struct {
	DropProductID  uuid.UUID `json:"drop_product_id"`
	Quantity       int32     `json:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	LineTotalCents int64     `json:"line_total_cents"`
}

type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"order_number"`
	PublicCode      string              `json:"public_code"`
	Status          string              `json:"status"`
	PickupTime      string              `json:"pickup_time"`
	TotalCents      int64               `json:"total_cents"`
	PaymentIntentID *string             `json:"payment_intent_id,omitempty"`
	NeedsAttention  bool                `json:"needs_attention,omitempty"`
	Items           []OrderLineResponse `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
}

func ToOrderResponse(o *models.Order) OrderResponse {
	items := make([]OrderLineResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderLineResponse{
			DropProductID:  it.DropProductID,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
			LineTotalCents: it.LineTotalCents,
		})
	}
	return OrderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		PublicCode:      o.PublicCode,
		Status:          string(o.Status),
		PickupTime:      o.PickupTime,
		TotalCents:      o.TotalCents,
		PaymentIntentID: o.PaymentIntentID,
		NeedsAttention:  o.NeedsAttention,
		Items:           items,
		CreatedAt:       o.CreatedAt,
	}
}
