package repository

import (
	"context"
	"errors"
	"time"

	"sandwich-shop-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DropListFilter struct {
	Status *models.DropStatus
	Limit  int
	Offset int
}

type DropRepo interface {
	Create(ctx context.Context, d *models.Drop) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Drop, error)
	// GetActive returns the orderable drop: status=active with a pickup
	// deadline no further than grace in the past.
	GetActive(ctx context.Context, now time.Time, grace time.Duration) (*models.Drop, error)
	List(ctx context.Context, f DropListFilter) ([]models.Drop, int64, error)
	// UpdateStatus transitions only from one of the expected statuses,
	// stamping status_changed_at. Reports whether a row moved.
	UpdateStatus(ctx context.Context, id uuid.UUID, from []models.DropStatus, to models.DropStatus, at time.Time) (bool, error)
	// DeactivateOthers completes every active drop except keep.
	DeactivateOthers(ctx context.Context, keep uuid.UUID, at time.Time) (int64, error)
	// NextOrderNumber atomically advances the drop's order sequence.
	NextOrderNumber(ctx context.Context, id uuid.UUID) (int64, error)
}

type dropRepo struct{ db *gorm.DB }

func NewDropRepo(db *gorm.DB) DropRepo { return &dropRepo{db: db} }

func (r *dropRepo) Create(ctx context.Context, d *models.Drop) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *dropRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Drop, error) {
	var d models.Drop
	err := r.db.WithContext(ctx).Preload("Location").First(&d, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &d, err
}

func (r *dropRepo) GetActive(ctx context.Context, now time.Time, grace time.Duration) (*models.Drop, error) {
	var d models.Drop
	err := r.db.WithContext(ctx).
		Preload("Location").
		Where("status = ? AND pickup_deadline > ?", models.DropStatusActive, now.Add(-grace)).
		Order("status_changed_at DESC").
		First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &d, err
}

func (r *dropRepo) List(ctx context.Context, f DropListFilter) ([]models.Drop, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Drop{})
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

	var list []models.Drop
	err := q.Order("date DESC").Limit(f.Limit).Offset(f.Offset).Preload("Location").Find(&list).Error
	return list, total, err
}

func (r *dropRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from []models.DropStatus, to models.DropStatus, at time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&models.Drop{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(map[string]any{"status": to, "status_changed_at": at})
	return tx.RowsAffected > 0, tx.Error
}

func (r *dropRepo) DeactivateOthers(ctx context.Context, keep uuid.UUID, at time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).
		Model(&models.Drop{}).
		Where("id <> ? AND status = ?", keep, models.DropStatusActive).
		Updates(map[string]any{"status": models.DropStatusCompleted, "status_changed_at": at})
	return tx.RowsAffected, tx.Error
}

func (r *dropRepo) NextOrderNumber(ctx context.Context, id uuid.UUID) (int64, error) {
	// Single UPDATE ... RETURNING keeps the sequence monotonic under
	// concurrent order creation.
	var seq int64
	err := r.db.WithContext(ctx).Raw(`
UPDATE drops
SET order_seq = order_seq + 1
WHERE id = @id
RETURNING order_seq
`, map[string]any{"id": id}).Scan(&seq).Error
	if err != nil {
		return 0, err
	}
	if seq == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return seq, nil
}
