package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sandwich-shop-service/internal/models"
	"sandwich-shop-service/internal/repository"

	"github.com/google/uuid"
	"github.com/nanorand/nanorand"
	"go.uber.org/zap"
)

type orderService struct {
	repo      *repository.Repository
	inventory InventoryService
	notifier  Notifier
	log       *zap.Logger
	now       func() time.Time
	grace     time.Duration
}

func NewOrderService(repo *repository.Repository, inventory InventoryService, notifier Notifier, log *zap.Logger) OrderService {
	return &orderService{
		repo:      repo,
		inventory: inventory,
		notifier:  notifier,
		log:       log,
		now:       time.Now,
		grace:     gracePeriod,
	}
}

// orderLine pairs a persisted line item with its menu snapshot.
type orderLine struct {
	item        models.OrderProduct
	productName string
}

// buildOrderLines prices the cart from the drop's ledger rows. The selling
// price snapshot on drop_products is authoritative; client totals are not.
func buildOrderLines(menu []models.DropProduct, items []ReserveItem) ([]orderLine, int64, error) {
	byID := make(map[uuid.UUID]models.DropProduct, len(menu))
	for _, dp := range menu {
		byID[dp.ID] = dp
	}

	lines := make([]orderLine, 0, len(items))
	var total int64
	for _, it := range items {
		dp, ok := byID[it.DropProductID]
		if !ok {
			return nil, 0, ErrProductNotInDrop
		}
		lineTotal := int64(it.Quantity) * dp.SellingPriceCents
		total += lineTotal

		name := ""
		if dp.Product != nil {
			name = dp.Product.Name
		}
		lines = append(lines, orderLine{
			item: models.OrderProduct{
				DropProductID:  dp.ID,
				Quantity:       it.Quantity,
				UnitPriceCents: dp.SellingPriceCents,
				LineTotalCents: lineTotal,
			},
			productName: name,
		})
	}
	return lines, total, nil
}

func validateCustomer(in CreateOrderInput) error {
	if strings.TrimSpace(in.CustomerName) == "" || strings.TrimSpace(in.CustomerEmail) == "" {
		return ErrMissingCustomer
	}
	if strings.TrimSpace(in.PickupTime) == "" {
		return ErrMissingPickupTime
	}
	return nil
}

func formatOrderNumber(seq int64) string { return fmt.Sprintf("#%03d", seq) }

func newPublicCode() (string, error) {
	code, err := nanorand.Gen(8)
	if err != nil {
		return "", err
	}
	return "SW-" + code, nil
}

func (s *orderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	if err := validateCustomer(in); err != nil {
		return nil, err
	}
	if len(in.Items) == 0 {
		return nil, ErrEmptyItems
	}
	items, err := mergeItems(in.Items)
	if err != nil {
		return nil, err
	}

	now := s.now()

	// 1. Resolve the orderable drop.
	drop, err := s.repo.Drops.GetActive(ctx, now, s.grace)
	if err != nil {
		return nil, err
	}
	if drop == nil {
		return nil, ErrNoActiveDrop
	}
	if d := strings.TrimSpace(in.PickupDate); d != "" && d != drop.Date.Format("2006-01-02") {
		return nil, ErrPickupDateStale
	}

	// 2. Price the cart from the drop menu.
	menu, err := s.repo.DropProducts.ListByDrop(ctx, drop.ID)
	if err != nil {
		return nil, err
	}
	lines, total, err := buildOrderLines(menu, items)
	if err != nil {
		return nil, err
	}
	if in.TotalCents != 0 && in.TotalCents != total {
		s.log.Warn("client total disagrees with ledger pricing",
			zap.Int64("client_total_cents", in.TotalCents),
			zap.Int64("server_total_cents", total))
	}

	// 3. Resolve the customer and allocate the order number.
	client, err := s.repo.Clients.GetOrCreate(ctx, in.CustomerName, in.CustomerEmail, in.CustomerPhone)
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

	// 4. Reserve the whole cart; a sold-out line aborts before any order row
	// exists.
	if err := s.inventory.ReserveMultiple(ctx, items); err != nil {
		return nil, err
	}

	// 5. Persist order and line items. If this fails the reservation is now
	// orphaned from any order, so it must be compensated or the stock is
	// silently lost.
	order := &models.Order{
		DropID:          drop.ID,
		ClientID:        client.ID,
		OrderNumber:     formatOrderNumber(seq),
		PublicCode:      code,
		Status:          models.OrderStatusPending,
		PickupTime:      strings.TrimSpace(in.PickupTime),
		TotalCents:      total,
		PaymentIntentID: in.PaymentIntentID,
		Instructions:    strings.TrimSpace(in.Instructions),
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
		s.compensateReservation(ctx, order, items, err)
		return nil, err
	}

	// 6. Best-effort confirmation; never rolls anything back.
	s.publishConfirmation(ctx, order, client, lines)

	return s.repo.Orders.GetByID(ctx, order.ID)
}

// compensateReservation releases a reservation whose order persistence failed.
// If even the release fails the ledger is holding phantom stock, which is an
// operator problem, not a customer one.
func (s *orderService) compensateReservation(ctx context.Context, order *models.Order, items []ReserveItem, cause error) {
	s.log.Error("order persistence failed after reservation, releasing", zap.Error(cause))
	if err := s.inventory.ReleaseMultiple(ctx, items); err != nil {
		s.log.Error("compensating release failed: ledger now holds phantom stock", zap.Error(err))
		if s.notifier != nil {
			_ = s.notifier.PublishAdminAlert(ctx, AdminAlertEvent{
				Severity:   AlertCritical,
				Subject:    "compensating release failed",
				Reason:     err.Error(),
				Items:      items,
				OccurredAt: s.now(),
			})
		}
	}
}

func (s *orderService) publishConfirmation(ctx context.Context, order *models.Order, client *models.Client, lines []orderLine) {
	if s.notifier == nil {
		return
	}
	evItems := make([]OrderLineEvent, 0, len(lines))
	for _, l := range lines {
		evItems = append(evItems, OrderLineEvent{
			ProductName:    l.productName,
			Quantity:       l.item.Quantity,
			LineTotalCents: l.item.LineTotalCents,
		})
	}
	err := s.notifier.PublishOrderConfirmation(ctx, OrderConfirmationEvent{
		OrderID:      order.ID,
		OrderNumber:  order.OrderNumber,
		PublicCode:   order.PublicCode,
		CustomerName: client.Name,
		To:           client.Email,
		PickupTime:   order.PickupTime,
		TotalCents:   order.TotalCents,
		Items:        evItems,
		CreatedAt:    s.now(),
	})
	if err != nil {
		s.log.Warn("confirmation publish failed", zap.String("order_id", order.ID.String()), zap.Error(err))
	}
}

func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	ord, err := s.repo.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, ErrOrderNotFound
	}
	return ord, nil
}

func (s *orderService) GetOrderByPaymentIntent(ctx context.Context, paymentIntentID string) (*models.Order, error) {
	ord, err := s.repo.Orders.GetByPaymentIntentID(ctx, paymentIntentID)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, ErrOrderNotFound
	}
	return ord, nil
}

func (s *orderService) ListOrders(ctx context.Context, dropID *uuid.UUID, status *models.OrderStatus, limit, offset int) ([]*models.Order, int64, error) {
	return s.repo.Orders.List(ctx, repository.OrderListFilter{
		DropID: dropID,
		Status: status,
		Limit:  limit,
		Offset: offset,
	})
}
