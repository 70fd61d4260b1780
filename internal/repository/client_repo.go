package repository

import (
	"context"
	"errors"
	"strings"

	"sandwich-shop-service/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ClientRepo interface {
	// GetOrCreate upserts by email; name and phone are refreshed on conflict
	// so the latest checkout contact wins.
	GetOrCreate(ctx context.Context, name, email, phone string) (*models.Client, error)
	GetByEmail(ctx context.Context, email string) (*models.Client, error)
}

type clientRepo struct{ db *gorm.DB }

func NewClientRepo(db *gorm.DB) ClientRepo { return &clientRepo{db: db} }

func (r *clientRepo) GetOrCreate(ctx context.Context, name, email, phone string) (*models.Client, error) {
	rec := models.Client{
		Name:  strings.TrimSpace(name),
		Email: normalizeEmail(email),
		Phone: strings.TrimSpace(phone),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.Assignments(map[string]any{"name": rec.Name, "phone": rec.Phone}),
		}).
		Create(&rec).Error
	if err != nil {
		return nil, err
	}
	// The upsert does not populate ID on conflict; read the row back.
	return r.GetByEmail(ctx, rec.Email)
}

func (r *clientRepo) GetByEmail(ctx context.Context, email string) (*models.Client, error) {
	var c models.Client
	err := r.db.WithContext(ctx).First(&c, "email = ?", normalizeEmail(email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
