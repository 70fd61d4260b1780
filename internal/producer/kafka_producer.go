package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sandwich-shop-service/internal/service"

	"github.com/segmentio/kafka-go"
)

// EmailMessage is the wire schema the notifier worker consumes. Admin alerts
// travel the same topic, addressed to the configured admin inbox.
type EmailMessage struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject"`
	Template string         `json:"template"`
	Data     map[string]any `json:"data"`
}

type NotificationProducer struct {
	writer     *kafka.Writer
	adminEmail string
}

func NewNotificationProducer(brokers []string, topic, adminEmail string) *NotificationProducer {
	return &NotificationProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
		},
		adminEmail: adminEmail,
	}
}

func (p *NotificationProducer) publish(ctx context.Context, key string, msg EmailMessage) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	value, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
}

func (p *NotificationProducer) PublishOrderConfirmation(ctx context.Context, e service.OrderConfirmationEvent) error {
	items := make([]map[string]any, 0, len(e.Items))
	for _, it := range e.Items {
		items = append(items, map[string]any{
			"product_name":     it.ProductName,
			"quantity":         it.Quantity,
			"line_total_cents": it.LineTotalCents,
		})
	}
	return p.publish(ctx, e.OrderID.String(), EmailMessage{
		To:       e.To,
		Subject:  fmt.Sprintf("Your order %s is in", e.OrderNumber),
		Template: "order_confirmation",
		Data: map[string]any{
			"customer_name": e.CustomerName,
			"order_number":  e.OrderNumber,
			"public_code":   e.PublicCode,
			"pickup_time":   e.PickupTime,
			"total_cents":   e.TotalCents,
			"items":         items,
		},
	})
}

func (p *NotificationProducer) PublishAdminAlert(ctx context.Context, e service.AdminAlertEvent) error {
	subject := e.Subject
	if e.Severity == service.AlertCritical {
		subject = "[URGENT] " + subject
	}
	items := make([]map[string]any, 0, len(e.Items))
	for _, it := range e.Items {
		items = append(items, map[string]any{
			"drop_product_id": it.DropProductID.String(),
			"quantity":        it.Quantity,
		})
	}
	data := map[string]any{
		"severity":          string(e.Severity),
		"reason":            e.Reason,
		"payment_intent_id": e.PaymentIntentID,
		"customer_email":    e.CustomerEmail,
		"items":             items,
		"occurred_at":       e.OccurredAt.Format(time.RFC3339),
	}
	if e.OrderID != nil {
		data["order_id"] = e.OrderID.String()
	}
	key := e.PaymentIntentID
	if key == "" {
		key = string(e.Severity)
	}
	return p.publish(ctx, key, EmailMessage{
		To:       p.adminEmail,
		Subject:  subject,
		Template: "admin_alert",
		Data:     data,
	})
}

func (p *NotificationProducer) Close() error {
	return p.writer.Close()
}
