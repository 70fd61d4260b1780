package repository

import (
	"context"
	"errors"

	"sandwich-shop-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LocationRepo interface {
	Create(ctx context.Context, l *models.Location) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Location, error)
	List(ctx context.Context) ([]models.Location, error)
}

type locationRepo struct{ db *gorm.DB }

func NewLocationRepo(db *gorm.DB) LocationRepo { return &locationRepo{db: db} }

func (r *locationRepo) Create(ctx context.Context, l *models.Location) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *locationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	var l models.Location
	err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &l, err
}

func (r *locationRepo) List(ctx context.Context) ([]models.Location, error) {
	var list []models.Location
	err := r.db.WithContext(ctx).Order("name ASC").Find(&list).Error
	return list, err
}
