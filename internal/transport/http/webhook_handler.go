package http

import (
	"encoding/json"
	"io"
	"net/http"

	"sandwich-shop-service/internal/dto"
	"sandwich-shop-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"
)

// maxWebhookBody caps the event payload we are willing to read. Stripe events
// are small; anything larger is not one of ours.
const maxWebhookBody = 64 << 10

type WebhookHandler struct {
	payments      service.PaymentService
	signingSecret string
	log           *zap.Logger
}

func NewWebhookHandler(payments service.PaymentService, signingSecret string, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{payments: payments, signingSecret: signingSecret, log: log}
}

// Handle processes Stripe webhook deliveries. Responses drive Stripe's retry
// machinery: 2xx acknowledges, 4xx drops the event, 5xx asks for a retry.
func (h *WebhookHandler) Handle(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("failed to read request body", nil))
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), h.signingSecret)
	if err != nil {
		h.log.Warn("webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid signature", nil))
		return
	}

	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		h.handleSucceeded(c, event)
	case stripe.EventTypePaymentIntentPaymentFailed:
		h.handleFailed(c, event)
	default:
		// Unhandled event types are acknowledged so Stripe stops resending them.
		h.log.Debug("ignoring webhook event", zap.String("type", string(event.Type)))
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}

func (h *WebhookHandler) handleSucceeded(c *gin.Context, event stripe.Event) {
	intent, ok := h.parseIntent(c, event)
	if !ok {
		return
	}

	order, err := h.payments.HandlePaymentSucceeded(c.Request.Context(), event.ID, intent)
	if err != nil {
		h.log.Error("payment succeeded handling failed",
			zap.String("event_id", event.ID),
			zap.String("payment_intent_id", intent.ID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError("event processing failed"))
		return
	}

	resp := gin.H{"received": true}
	if order != nil {
		resp["orderId"] = order.ID
	}
	c.JSON(http.StatusOK, resp)
}

func (h *WebhookHandler) handleFailed(c *gin.Context, event stripe.Event) {
	intent, ok := h.parseIntent(c, event)
	if !ok {
		return
	}

	if err := h.payments.HandlePaymentFailed(c.Request.Context(), event.ID, intent); err != nil {
		h.log.Error("payment failed handling failed",
			zap.String("event_id", event.ID),
			zap.String("payment_intent_id", intent.ID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError("event processing failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// parseIntent extracts the payment intent and its typed metadata from the
// event. Malformed payloads get a 400 so Stripe does not retry them forever.
func (h *WebhookHandler) parseIntent(c *gin.Context, event stripe.Event) (service.PaymentIntentInfo, bool) {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		h.log.Warn("malformed payment intent payload", zap.String("event_id", event.ID), zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("malformed event payload", nil))
		return service.PaymentIntentInfo{}, false
	}

	md, err := dto.ParseIntentMetadata(pi.Metadata)
	if err != nil {
		h.log.Warn("invalid payment intent metadata",
			zap.String("event_id", event.ID),
			zap.String("payment_intent_id", pi.ID),
			zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid event metadata", nil))
		return service.PaymentIntentInfo{}, false
	}

	items := make([]service.ReserveItem, 0, len(md.Cart))
	for _, it := range md.Cart {
		items = append(items, service.ReserveItem{DropProductID: it.ID, Quantity: it.Quantity})
	}

	info := service.PaymentIntentInfo{
		ID:            pi.ID,
		AmountCents:   pi.Amount,
		DropID:        md.DropID,
		CustomerName:  md.CustomerName,
		CustomerEmail: md.CustomerEmail,
		CustomerPhone: md.CustomerPhone,
		PickupTime:    md.PickupTime,
		Items:         items,
	}
	if pi.LastPaymentError != nil {
		info.FailureMessage = pi.LastPaymentError.Msg
	}
	return info, true
}
