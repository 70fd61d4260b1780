package service_test

import (
	"context"
	"time"

	"sandwich-shop-service/internal/models"
	"sandwich-shop-service/internal/repository"
	"sandwich-shop-service/internal/service"

	"github.com/google/uuid"
)

// MockDropRepo
type MockDropRepo struct {
	CreateFunc           func(ctx context.Context, d *models.Drop) error
	GetByIDFunc          func(ctx context.Context, id uuid.UUID) (*models.Drop, error)
	GetActiveFunc        func(ctx context.Context, now time.Time, grace time.Duration) (*models.Drop, error)
	ListFunc             func(ctx context.Context, f repository.DropListFilter) ([]models.Drop, int64, error)
	UpdateStatusFunc     func(ctx context.Context, id uuid.UUID, from []models.DropStatus, to models.DropStatus, at time.Time) (bool, error)
	DeactivateOthersFunc func(ctx context.Context, keep uuid.UUID, at time.Time) (int64, error)
	NextOrderNumberFunc  func(ctx context.Context, id uuid.UUID) (int64, error)
}

func (m *MockDropRepo) Create(ctx context.Context, d *models.Drop) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, d)
	}
	return nil
}

func (m *MockDropRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Drop, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockDropRepo) GetActive(ctx context.Context, now time.Time, grace time.Duration) (*models.Drop, error) {
	if m.GetActiveFunc != nil {
		return m.GetActiveFunc(ctx, now, grace)
	}
	return nil, nil
}

func (m *MockDropRepo) List(ctx context.Context, f repository.DropListFilter) ([]models.Drop, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, f)
	}
	return nil, 0, nil
}

func (m *MockDropRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from []models.DropStatus, to models.DropStatus, at time.Time) (bool, error) {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, from, to, at)
	}
	return false, nil
}

func (m *MockDropRepo) DeactivateOthers(ctx context.Context, keep uuid.UUID, at time.Time) (int64, error) {
	if m.DeactivateOthersFunc != nil {
		return m.DeactivateOthersFunc(ctx, keep, at)
	}
	return 0, nil
}

func (m *MockDropRepo) NextOrderNumber(ctx context.Context, id uuid.UUID) (int64, error) {
	if m.NextOrderNumberFunc != nil {
		return m.NextOrderNumberFunc(ctx, id)
	}
	return 1, nil
}

// MockDropProductRepo
type MockDropProductRepo struct {
	CreateFunc              func(ctx context.Context, dp *models.DropProduct) error
	GetByIDFunc             func(ctx context.Context, id uuid.UUID) (*models.DropProduct, error)
	ListByDropFunc          func(ctx context.Context, dropID uuid.UUID) ([]models.DropProduct, error)
	UpdateStockAndPriceFunc func(ctx context.Context, id uuid.UUID, stock int32, priceCents int64) (bool, error)
	ZeroStockFunc           func(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteFunc              func(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteByDropFunc        func(ctx context.Context, dropID uuid.UUID) (int64, error)
	HasOrderReferencesFunc  func(ctx context.Context, id uuid.UUID) (bool, error)
	TryReserveFunc          func(ctx context.Context, id uuid.UUID, qty int32) (bool, error)
	ReleaseFunc             func(ctx context.Context, id uuid.UUID, qty int32) (bool, error)
}

func (m *MockDropProductRepo) Create(ctx context.Context, dp *models.DropProduct) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, dp)
	}
	return nil
}

func (m *MockDropProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.DropProduct, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockDropProductRepo) ListByDrop(ctx context.Context, dropID uuid.UUID) ([]models.DropProduct, error) {
	if m.ListByDropFunc != nil {
		return m.ListByDropFunc(ctx, dropID)
	}
	return nil, nil
}

func (m *MockDropProductRepo) UpdateStockAndPrice(ctx context.Context, id uuid.UUID, stock int32, priceCents int64) (bool, error) {
	if m.UpdateStockAndPriceFunc != nil {
		return m.UpdateStockAndPriceFunc(ctx, id, stock, priceCents)
	}
	return true, nil
}

func (m *MockDropProductRepo) ZeroStock(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.ZeroStockFunc != nil {
		return m.ZeroStockFunc(ctx, id)
	}
	return true, nil
}

func (m *MockDropProductRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return true, nil
}

func (m *MockDropProductRepo) DeleteByDrop(ctx context.Context, dropID uuid.UUID) (int64, error) {
	if m.DeleteByDropFunc != nil {
		return m.DeleteByDropFunc(ctx, dropID)
	}
	return 0, nil
}

func (m *MockDropProductRepo) HasOrderReferences(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.HasOrderReferencesFunc != nil {
		return m.HasOrderReferencesFunc(ctx, id)
	}
	return false, nil
}

func (m *MockDropProductRepo) TryReserve(ctx context.Context, id uuid.UUID, qty int32) (bool, error) {
	if m.TryReserveFunc != nil {
		return m.TryReserveFunc(ctx, id, qty)
	}
	return true, nil
}

func (m *MockDropProductRepo) Release(ctx context.Context, id uuid.UUID, qty int32) (bool, error) {
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, id, qty)
	}
	return true, nil
}

func (m *MockDropProductRepo) WithTx(ctx context.Context, fn func(tx repository.DropProductRepo) error) error {
	return fn(m)
}

// MockOrderRepo
type MockOrderRepo struct {
	CreateFunc               func(ctx context.Context, o *models.Order) error
	GetByIDFunc              func(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByPaymentIntentIDFunc func(ctx context.Context, paymentIntentID string) (*models.Order, error)
	UpdateStatusFromFunc     func(ctx context.Context, id uuid.UUID, from, to models.OrderStatus, reason *string) (bool, error)
	MarkNeedsAttentionFunc   func(ctx context.Context, id uuid.UUID) error
	CountByDropFunc          func(ctx context.Context, dropID uuid.UUID) (int64, error)
	ListFunc                 func(ctx context.Context, f repository.OrderListFilter) ([]*models.Order, int64, error)

	Items MockOrderProductRepo
}

func (m *MockOrderRepo) Create(ctx context.Context, o *models.Order) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, o)
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (m *MockOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockOrderRepo) GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Order, error) {
	if m.GetByPaymentIntentIDFunc != nil {
		return m.GetByPaymentIntentIDFunc(ctx, paymentIntentID)
	}
	return nil, nil
}

func (m *MockOrderRepo) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to models.OrderStatus, reason *string) (bool, error) {
	if m.UpdateStatusFromFunc != nil {
		return m.UpdateStatusFromFunc(ctx, id, from, to, reason)
	}
	return true, nil
}

func (m *MockOrderRepo) MarkNeedsAttention(ctx context.Context, id uuid.UUID) error {
	if m.MarkNeedsAttentionFunc != nil {
		return m.MarkNeedsAttentionFunc(ctx, id)
	}
	return nil
}

func (m *MockOrderRepo) CountByDrop(ctx context.Context, dropID uuid.UUID) (int64, error) {
	if m.CountByDropFunc != nil {
		return m.CountByDropFunc(ctx, dropID)
	}
	return 0, nil
}

func (m *MockOrderRepo) List(ctx context.Context, f repository.OrderListFilter) ([]*models.Order, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, f)
	}
	return nil, 0, nil
}

func (m *MockOrderRepo) WithTx(ctx context.Context, fn func(txOrders repository.OrderRepo, txItems repository.OrderProductRepo) error) error {
	return fn(m, &m.Items)
}

// MockOrderProductRepo
type MockOrderProductRepo struct {
	BulkCreateFunc  func(ctx context.Context, items []models.OrderProduct) error
	ListByOrderFunc func(ctx context.Context, orderID uuid.UUID) ([]models.OrderProduct, error)
}

func (m *MockOrderProductRepo) BulkCreate(ctx context.Context, items []models.OrderProduct) error {
	if m.BulkCreateFunc != nil {
		return m.BulkCreateFunc(ctx, items)
	}
	return nil
}

func (m *MockOrderProductRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderProduct, error) {
	if m.ListByOrderFunc != nil {
		return m.ListByOrderFunc(ctx, orderID)
	}
	return nil, nil
}

// MockClientRepo
type MockClientRepo struct {
	GetOrCreateFunc func(ctx context.Context, name, email, phone string) (*models.Client, error)
	GetByEmailFunc  func(ctx context.Context, email string) (*models.Client, error)
}

func (m *MockClientRepo) GetOrCreate(ctx context.Context, name, email, phone string) (*models.Client, error) {
	if m.GetOrCreateFunc != nil {
		return m.GetOrCreateFunc(ctx, name, email, phone)
	}
	return &models.Client{ID: uuid.New(), Name: name, Email: email, Phone: phone}, nil
}

func (m *MockClientRepo) GetByEmail(ctx context.Context, email string) (*models.Client, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, nil
}

// MockInventory
type MockInventory struct {
	ReserveMultipleFunc func(ctx context.Context, items []service.ReserveItem) error
	ReleaseMultipleFunc func(ctx context.Context, items []service.ReserveItem) error

	ReserveCalls [][]service.ReserveItem
	ReleaseCalls [][]service.ReserveItem
}

func (m *MockInventory) ReserveMultiple(ctx context.Context, items []service.ReserveItem) error {
	m.ReserveCalls = append(m.ReserveCalls, items)
	if m.ReserveMultipleFunc != nil {
		return m.ReserveMultipleFunc(ctx, items)
	}
	return nil
}

func (m *MockInventory) ReleaseMultiple(ctx context.Context, items []service.ReserveItem) error {
	m.ReleaseCalls = append(m.ReleaseCalls, items)
	if m.ReleaseMultipleFunc != nil {
		return m.ReleaseMultipleFunc(ctx, items)
	}
	return nil
}

// MockNotifier
type MockNotifier struct {
	Confirmations []service.OrderConfirmationEvent
	Alerts        []service.AdminAlertEvent

	PublishOrderConfirmationFunc func(ctx context.Context, e service.OrderConfirmationEvent) error
	PublishAdminAlertFunc        func(ctx context.Context, e service.AdminAlertEvent) error
}

func (m *MockNotifier) PublishOrderConfirmation(ctx context.Context, e service.OrderConfirmationEvent) error {
	m.Confirmations = append(m.Confirmations, e)
	if m.PublishOrderConfirmationFunc != nil {
		return m.PublishOrderConfirmationFunc(ctx, e)
	}
	return nil
}

func (m *MockNotifier) PublishAdminAlert(ctx context.Context, e service.AdminAlertEvent) error {
	m.Alerts = append(m.Alerts, e)
	if m.PublishAdminAlertFunc != nil {
		return m.PublishAdminAlertFunc(ctx, e)
	}
	return nil
}

// MockDeduper
type MockDeduper struct {
	FirstDeliveryFunc func(ctx context.Context, eventID string) (bool, error)
	ForgetFunc        func(ctx context.Context, eventID string) error

	Forgotten []string
}

func (m *MockDeduper) FirstDelivery(ctx context.Context, eventID string) (bool, error) {
	if m.FirstDeliveryFunc != nil {
		return m.FirstDeliveryFunc(ctx, eventID)
	}
	return true, nil
}

func (m *MockDeduper) Forget(ctx context.Context, eventID string) error {
	m.Forgotten = append(m.Forgotten, eventID)
	if m.ForgetFunc != nil {
		return m.ForgetFunc(ctx, eventID)
	}
	return nil
}

// claimOnce wires a MockDeduper to behave like the redis store: SETNX-style
// claims that Forget gives back.
func claimOnce(d *MockDeduper) {
	claimed := make(map[string]bool)
	d.FirstDeliveryFunc = func(ctx context.Context, eventID string) (bool, error) {
		if claimed[eventID] {
			return false, nil
		}
		claimed[eventID] = true
		return true, nil
	}
	d.ForgetFunc = func(ctx context.Context, eventID string) error {
		delete(claimed, eventID)
		return nil
	}
}
