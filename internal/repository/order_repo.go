package repository

import (
	"context"
	"errors"

	"sandwich-shop-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderListFilter struct {
	DropID *uuid.UUID
	Status *models.OrderStatus
	Limit  int
	Offset int
}

type OrderRepo interface {
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Order, error)
	// UpdateStatusFrom transitions status only when the current status matches
	// from; a false return means someone else already moved it. This is the
	// idempotency guard for webhook redelivery.
	UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to models.OrderStatus, reason *string) (bool, error)
	MarkNeedsAttention(ctx context.Context, id uuid.UUID) error
	CountByDrop(ctx context.Context, dropID uuid.UUID) (int64, error)
	List(ctx context.Context, f OrderListFilter) ([]*models.Order, int64, error)

	WithTx(ctx context.Context, fn func(txOrders OrderRepo, txItems OrderProductRepo) error) error
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) OrderRepo { return &orderRepo{db: db} }

func (r *orderRepo) Create(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var ord models.Order
	err := r.db.WithContext(ctx).Preload("Items").Preload("Client").First(&ord, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ord, err
}

func (r *orderRepo) GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Order, error) {
	var ord models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Client").
		First(&ord, "payment_intent_id = ?", paymentIntentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ord, err
}

func (r *orderRepo) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to models.OrderStatus, reason *string) (bool, error) {
	upd := map[string]any{"status": to}
	if reason != nil {
		upd["cancel_reason"] = reason
	}
	tx := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(upd)
	return tx.RowsAffected > 0, tx.Error
}

func (r *orderRepo) MarkNeedsAttention(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("needs_attention", true).Error
}

func (r *orderRepo) CountByDrop(ctx context.Context, dropID uuid.UUID) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("drop_id = ?", dropID).
		Count(&cnt).Error
	return cnt, err
}

func (r *orderRepo) List(ctx context.Context, f OrderListFilter) ([]*models.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{})

	if f.DropID != nil {
		q = q.Where("drop_id = ?", *f.DropID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	var list []*models.Order
	err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).
		Preload("Items").Preload("Client").Find(&list).Error
	return list, total, err
}

func (r *orderRepo) WithTx(ctx context.Context, fn func(txOrders OrderRepo, txItems OrderProductRepo) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&orderRepo{db: tx}, &orderProductRepo{db: tx})
	})
}
