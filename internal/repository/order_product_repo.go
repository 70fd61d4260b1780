package repository

import (
	"context"

	"sandwich-shop-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderProductRepo interface {
	BulkCreate(ctx context.Context, items []models.OrderProduct) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderProduct, error)
}

type orderProductRepo struct{ db *gorm.DB }

func NewOrderProductRepo(db *gorm.DB) OrderProductRepo { return &orderProductRepo{db: db} }

func (r *orderProductRepo) BulkCreate(ctx context.Context, items []models.OrderProduct) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *orderProductRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderProduct, error) {
	var list []models.OrderProduct
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}
