package service

import (
	"context"
	"time"

	"sandwich-shop-service/internal/models"
	"sandwich-shop-service/internal/repository"

	"go.uber.org/zap"
)

type paymentService struct {
	repo      *repository.Repository
	inventory InventoryService
	notifier  Notifier
	dedup     EventDeduper
	log       *zap.Logger
	now       func() time.Time
}

func NewPaymentService(repo *repository.Repository, inventory InventoryService, notifier Notifier, dedup EventDeduper, log *zap.Logger) PaymentService {
	return &paymentService{
		repo:      repo,
		inventory: inventory,
		notifier:  notifier,
		dedup:     dedup,
		log:       log,
		now:       time.Now,
	}
}

// firstDelivery is the fast-path duplicate filter. A dedup outage degrades to
// the status-transition guards on orders, so errors only log.
func (s *paymentService) firstDelivery(ctx context.Context, eventID string) bool {
	if s.dedup == nil || eventID == "" {
		return true
	}
	first, err := s.dedup.FirstDelivery(ctx, eventID)
	if err != nil {
		s.log.Warn("event dedup unavailable", zap.String("event_id", eventID), zap.Error(err))
		return true
	}
	return first
}

// forgetDelivery drops the dedup claim after a failed attempt. Stripe retries
// the same event ID, and that retry has to reach the status guards instead of
// being swallowed by a claim made before the work succeeded.
func (s *paymentService) forgetDelivery(ctx context.Context, eventID string) {
	if s.dedup == nil || eventID == "" {
		return
	}
	if err := s.dedup.Forget(ctx, eventID); err != nil {
		s.log.Warn("event dedup release failed", zap.String("event_id", eventID), zap.Error(err))
	}
}

func (s *paymentService) HandlePaymentSucceeded(ctx context.Context, eventID string, intent PaymentIntentInfo) (*models.Order, error) {
	if !s.firstDelivery(ctx, eventID) {
		s.log.Info("duplicate payment_intent.succeeded ignored", zap.String("event_id", eventID))
		return s.repo.Orders.GetByPaymentIntentID(ctx, intent.ID)
	}

	order, err := s.applyPaymentSucceeded(ctx, intent)
	if err != nil {
		s.forgetDelivery(ctx, eventID)
	}
	return order, err
}

func (s *paymentService) applyPaymentSucceeded(ctx context.Context, intent PaymentIntentInfo) (*models.Order, error) {
	order, err := s.repo.Orders.GetByPaymentIntentID(ctx, intent.ID)
	if err != nil {
		return nil, err
	}
	if order != nil {
		// Pay-later path: the order exists, already reserved. Promote it; a
		// redelivered event finds it confirmed and the guard makes this a
		// no-op.
		promoted, err := s.repo.Orders.UpdateStatusFrom(ctx, order.ID, models.OrderStatusPending, models.OrderStatusConfirmed, nil)
		if err != nil {
			return nil, err
		}
		if promoted {
			s.log.Info("order confirmed by webhook",
				zap.String("order_id", order.ID.String()),
				zap.String("payment_intent_id", intent.ID))
		}
		return s.repo.Orders.GetByID(ctx, order.ID)
	}

	// Fallback: payment-first cart with no order row yet. Create it confirmed
	// from the intent metadata, then reserve.
	return s.createOrderFromIntent(ctx, intent)
}

func (s *paymentService) createOrderFromIntent(ctx context.Context, intent PaymentIntentInfo) (*models.Order, error) {
	items, err := mergeItems(intent.Items)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}

	drop, err := s.repo.Drops.GetByID(ctx, intent.DropID)
	if err != nil {
		return nil, err
	}
	if drop == nil {
		return nil, ErrDropNotFound
	}

	menu, err := s.repo.DropProducts.ListByDrop(ctx, drop.ID)
	if err != nil {
		return nil, err
	}
	lines, total, err := buildOrderLines(menu, items)
	if err != nil {
		return nil, err
	}
	if intent.AmountCents != 0 && intent.AmountCents != total {
		s.log.Warn("paid amount disagrees with ledger pricing",
			zap.String("payment_intent_id", intent.ID),
			zap.Int64("paid_cents", intent.AmountCents),
			zap.Int64("server_total_cents", total))
	}

	client, err := s.repo.Clients.GetOrCreate(ctx, intent.CustomerName, intent.CustomerEmail, intent.CustomerPhone)
	if err != nil {
		return nil, err
	}
	seq, err := s.repo.Drops.NextOrderNumber(ctx, drop.ID)
	if err != nil {
		return nil, err
	}
	code, err := newPublicCode()
	if err != nil {
		return nil, err
	}

	intentID := intent.ID
	order := &models.Order{
		DropID:          drop.ID,
		ClientID:        client.ID,
		OrderNumber:     formatOrderNumber(seq),
		PublicCode:      code,
		Status:          models.OrderStatusConfirmed,
		PickupTime:      intent.PickupTime,
		TotalCents:      total,
		PaymentIntentID: &intentID,
	}
	err = s.repo.Orders.WithTx(ctx, func(txOrders repository.OrderRepo, txItems repository.OrderProductRepo) error {
		if err := txOrders.Create(ctx, order); err != nil {
			return err
		}
		itemRows := make([]models.OrderProduct, 0, len(lines))
		for _, l := range lines {
			row := l.item
			row.OrderID = order.ID
			itemRows = append(itemRows, row)
		}
		return txItems.BulkCreate(ctx, itemRows)
	})
	if err != nil {
		return nil, err
	}

	// Payment already succeeded, so a reservation failure here means the
	// customer paid for stock the ledger cannot grant. The order stays,
	// flagged, and an operator sorts it out; nothing is auto-refunded.
	if err := s.inventory.ReserveMultiple(ctx, items); err != nil {
		s.log.Error("paid order could not be reserved",
			zap.String("order_id", order.ID.String()),
			zap.String("payment_intent_id", intent.ID),
			zap.Error(err))
		if markErr := s.repo.Orders.MarkNeedsAttention(ctx, order.ID); markErr != nil {
			s.log.Error("failed to flag order for attention", zap.Error(markErr))
		}
		s.alert(ctx, AdminAlertEvent{
			Severity:        AlertCritical,
			Subject:         "payment succeeded but stock could not be reserved",
			Reason:          err.Error(),
			OrderID:         &order.ID,
			PaymentIntentID: intent.ID,
			CustomerEmail:   client.Email,
			Items:           items,
			OccurredAt:      s.now(),
		})
		return s.repo.Orders.GetByID(ctx, order.ID)
	}

	if s.notifier != nil {
		evItems := make([]OrderLineEvent, 0, len(lines))
		for _, l := range lines {
			evItems = append(evItems, OrderLineEvent{
				ProductName:    l.productName,
				Quantity:       l.item.Quantity,
				LineTotalCents: l.item.LineTotalCents,
			})
		}
		if err := s.notifier.PublishOrderConfirmation(ctx, OrderConfirmationEvent{
			OrderID:      order.ID,
			OrderNumber:  order.OrderNumber,
			PublicCode:   order.PublicCode,
			CustomerName: client.Name,
			To:           client.Email,
			PickupTime:   order.PickupTime,
			TotalCents:   order.TotalCents,
			Items:        evItems,
			CreatedAt:    s.now(),
		}); err != nil {
			s.log.Warn("confirmation publish failed", zap.String("order_id", order.ID.String()), zap.Error(err))
		}
	}

	return s.repo.Orders.GetByID(ctx, order.ID)
}

func (s *paymentService) HandlePaymentFailed(ctx context.Context, eventID string, intent PaymentIntentInfo) error {
	if !s.firstDelivery(ctx, eventID) {
		s.log.Info("duplicate payment_intent.payment_failed ignored", zap.String("event_id", eventID))
		return nil
	}

	if err := s.applyPaymentFailed(ctx, intent); err != nil {
		s.forgetDelivery(ctx, eventID)
		return err
	}
	return nil
}

func (s *paymentService) applyPaymentFailed(ctx context.Context, intent PaymentIntentInfo) error {
	reason := intent.FailureMessage
	if reason == "" {
		reason = "payment failed"
	}

	order, err := s.repo.Orders.GetByPaymentIntentID(ctx, intent.ID)
	if err != nil {
		return err
	}

	switch {
	case order != nil:
		// The status transition is the release-applied marker: only the
		// delivery that flips pending to cancelled releases stock.
		cancelled, err := s.repo.Orders.UpdateStatusFrom(ctx, order.ID, models.OrderStatusPending, models.OrderStatusCancelled, &reason)
		if err != nil {
			return err
		}
		if !cancelled {
			s.log.Info("payment_failed for order no longer pending, nothing to release",
				zap.String("order_id", order.ID.String()))
			return nil
		}
		items := make([]ReserveItem, 0, len(order.Items))
		for _, it := range order.Items {
			items = append(items, ReserveItem{DropProductID: it.DropProductID, Quantity: it.Quantity})
		}
		if err := s.inventory.ReleaseMultiple(ctx, items); err != nil {
			s.log.Error("release after payment failure errored", zap.Error(err))
		}
		s.alert(ctx, AdminAlertEvent{
			Severity:        AlertWarning,
			Subject:         "payment failed, reservation released",
			Reason:          reason,
			OrderID:         &order.ID,
			PaymentIntentID: intent.ID,
			CustomerEmail:   intent.CustomerEmail,
			Items:           items,
			OccurredAt:      s.now(),
		})

	case len(intent.Items) > 0:
		// No order row: reservation state is unknown, so release what the
		// intent metadata claims. The SQL floor and the event dedup keep a
		// redelivery from eating into other customers' holds.
		if err := s.inventory.ReleaseMultiple(ctx, intent.Items); err != nil {
			s.log.Error("metadata release after payment failure errored", zap.Error(err))
		}
		s.alert(ctx, AdminAlertEvent{
			Severity:        AlertWarning,
			Subject:         "payment failed before order creation",
			Reason:          reason,
			PaymentIntentID: intent.ID,
			CustomerEmail:   intent.CustomerEmail,
			Items:           intent.Items,
			OccurredAt:      s.now(),
		})

	default:
		s.log.Info("payment_failed with no order and no cart metadata",
			zap.String("payment_intent_id", intent.ID))
	}

	return nil
}

func (s *paymentService) alert(ctx context.Context, e AdminAlertEvent) {
	if s.notifier == nil {
		s.log.Error("admin alert dropped: no notifier configured", zap.String("subject", e.Subject))
		return
	}
	if err := s.notifier.PublishAdminAlert(ctx, e); err != nil {
		s.log.Error("admin alert publish failed", zap.String("subject", e.Subject), zap.Error(err))
	}
}
