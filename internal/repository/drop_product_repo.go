package repository

import (
	"context"
	"errors"

	"sandwich-shop-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DropProductRepo interface {
	Create(ctx context.Context, dp *models.DropProduct) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.DropProduct, error)
	ListByDrop(ctx context.Context, dropID uuid.UUID) ([]models.DropProduct, error)
	UpdateStockAndPrice(ctx context.Context, id uuid.UUID, stock int32, priceCents int64) (bool, error)
	ZeroStock(ctx context.Context, id uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteByDrop(ctx context.Context, dropID uuid.UUID) (int64, error)
	// HasOrderReferences reports whether any order line item points at this row.
	HasOrderReferences(ctx context.Context, id uuid.UUID) (bool, error)

	// Stock ledger mutations. Both are single conditional UPDATEs so that the
	// check and the increment cannot be split across concurrent callers.

	// TryReserve: if reserved + qty <= stock then reserved += qty.
	TryReserve(ctx context.Context, id uuid.UUID, qty int32) (bool, error)
	// Release: reserved -= qty, floored at zero.
	Release(ctx context.Context, id uuid.UUID, qty int32) (bool, error)

	WithTx(ctx context.Context, fn func(tx DropProductRepo) error) error
}

type dropProductRepo struct{ db *gorm.DB }

func NewDropProductRepo(db *gorm.DB) DropProductRepo { return &dropProductRepo{db: db} }

func (r *dropProductRepo) Create(ctx context.Context, dp *models.DropProduct) error {
	return r.db.WithContext(ctx).Create(dp).Error
}

func (r *dropProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.DropProduct, error) {
	var dp models.DropProduct
	err := r.db.WithContext(ctx).Preload("Product").First(&dp, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &dp, err
}

func (r *dropProductRepo) ListByDrop(ctx context.Context, dropID uuid.UUID) ([]models.DropProduct, error) {
	var list []models.DropProduct
	err := r.db.WithContext(ctx).
		Where("drop_id = ?", dropID).
		Order("created_at ASC").
		Preload("Product").
		Find(&list).Error
	return list, err
}

func (r *dropProductRepo) UpdateStockAndPrice(ctx context.Context, id uuid.UUID, stock int32, priceCents int64) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&models.DropProduct{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"stock_quantity":      stock,
			"selling_price_cents": priceCents,
		})
	return tx.RowsAffected > 0, tx.Error
}

func (r *dropProductRepo) ZeroStock(ctx context.Context, id uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&models.DropProduct{}).
		Where("id = ?", id).
		Update("stock_quantity", 0)
	return tx.RowsAffected > 0, tx.Error
}

func (r *dropProductRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&models.DropProduct{}, "id = ?", id)
	return tx.RowsAffected > 0, tx.Error
}

func (r *dropProductRepo) DeleteByDrop(ctx context.Context, dropID uuid.UUID) (int64, error) {
	tx := r.db.WithContext(ctx).Delete(&models.DropProduct{}, "drop_id = ?", dropID)
	return tx.RowsAffected, tx.Error
}

func (r *dropProductRepo) HasOrderReferences(ctx context.Context, id uuid.UUID) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderProduct{}).
		Where("drop_product_id = ?", id).
		Count(&cnt).Error
	return cnt > 0, err
}

func (r *dropProductRepo) TryReserve(ctx context.Context, id uuid.UUID, qty int32) (bool, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE drop_products
SET reserved_quantity = reserved_quantity + @q,
    updated_at = now()
WHERE id = @id
  AND reserved_quantity + @q <= stock_quantity
`, map[string]any{
		"id": id,
		"q":  qty,
	})
	return tx.RowsAffected > 0, tx.Error
}

func (r *dropProductRepo) Release(ctx context.Context, id uuid.UUID, qty int32) (bool, error) {
	// GREATEST keeps over-releases from failure-path retries from driving the
	// counter negative.
	tx := r.db.WithContext(ctx).Exec(`
UPDATE drop_products
SET reserved_quantity = GREATEST(reserved_quantity - @q, 0),
    updated_at = now()
WHERE id = @id
`, map[string]any{
		"id": id,
		"q":  qty,
	})
	return tx.RowsAffected > 0, tx.Error
}

func (r *dropProductRepo) WithTx(ctx context.Context, fn func(tx DropProductRepo) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&dropProductRepo{db: tx})
	})
}
