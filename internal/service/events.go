package service

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type OrderLineEvent struct {
	ProductName    string `json:"product_name"`
	Quantity       int32  `json:"quantity"`
	LineTotalCents int64  `json:"line_total_cents"`
}

type OrderConfirmationEvent struct {
	OrderID      uuid.UUID        `json:"order_id"`
	OrderNumber  string           `json:"order_number"`
	PublicCode   string           `json:"public_code"`
	CustomerName string           `json:"customer_name"`
	To           string           `json:"to"`
	PickupTime   string           `json:"pickup_time"`
	TotalCents   int64            `json:"total_cents"`
	Items        []OrderLineEvent `json:"items"`
	CreatedAt    time.Time        `json:"created_at"`
}

type AlertSeverity string

const (
	AlertWarning  AlertSeverity = "warning"
	AlertCritical AlertSeverity = "critical"
)

type AdminAlertEvent struct {
	Severity        AlertSeverity `json:"severity"`
	Subject         string        `json:"subject"`
	Reason          string        `json:"reason"`
	OrderID         *uuid.UUID    `json:"order_id,omitempty"`
	PaymentIntentID string        `json:"payment_intent_id,omitempty"`
	CustomerEmail   string        `json:"customer_email,omitempty"`
	Items           []ReserveItem `json:"items,omitempty"`
	OccurredAt      time.Time     `json:"occurred_at"`
}

// Notifier is the outbound notification bus. Publishing is best-effort for
// confirmations and must never fail an order; alerts are logged when the bus
// itself is down.
type Notifier interface {
	PublishOrderConfirmation(ctx context.Context, e OrderConfirmationEvent) error
	PublishAdminAlert(ctx context.Context, e AdminAlertEvent) error
}
