package service

import (
	"context"
	"time"

	"sandwich-shop-service/internal/models"
	"sandwich-shop-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type dropService struct {
	repo  *repository.Repository
	log   *zap.Logger
	now   func() time.Time
	grace time.Duration
}

func NewDropService(repo *repository.Repository, log *zap.Logger) DropService {
	return &dropService{
		repo:  repo,
		log:   log,
		now:   time.Now,
		grace: gracePeriod,
	}
}

func (s *dropService) CreateLocation(ctx context.Context, name, address string) (*models.Location, error) {
	l := &models.Location{Name: name, Address: address}
	if err := s.repo.Locations.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *dropService) ListLocations(ctx context.Context) ([]models.Location, error) {
	return s.repo.Locations.List(ctx)
}

func (s *dropService) CreateDrop(ctx context.Context, in CreateDropInput) (*models.Drop, error) {
	if in.Date.IsZero() || in.PickupDeadline.IsZero() {
		return nil, ErrInvalidDropInput
	}
	loc, err := s.repo.Locations.GetByID(ctx, in.LocationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, ErrLocationNotFound
	}
	now := s.now()
	d := &models.Drop{
		Date:            in.Date,
		LocationID:      in.LocationID,
		Status:          models.DropStatusUpcoming,
		PickupDeadline:  in.PickupDeadline,
		StatusChangedAt: now,
	}
	if err := s.repo.Drops.Create(ctx, d); err != nil {
		return nil, err
	}
	return s.repo.Drops.GetByID(ctx, d.ID)
}

// ActivateDrop opens a drop for ordering. The storefront expects a single
// orderable drop, so any other active drop is completed in the same
// transaction.
func (s *dropService) ActivateDrop(ctx context.Context, id uuid.UUID) (*models.Drop, error) {
	now := s.now()
	err := s.repo.WithTx(func(tx *repository.Repository) error {
		moved, err := tx.Drops.UpdateStatus(ctx, id, []models.DropStatus{models.DropStatusUpcoming}, models.DropStatusActive, now)
		if err != nil {
			return err
		}
		if !moved {
			return s.transitionError(ctx, tx, id)
		}
		demoted, err := tx.Drops.DeactivateOthers(ctx, id, now)
		if err != nil {
			return err
		}
		if demoted > 0 {
			s.log.Info("previous active drop completed", zap.Int64("count", demoted))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Drops.GetByID(ctx, id)
}

func (s *dropService) CompleteDrop(ctx context.Context, id uuid.UUID) (*models.Drop, error) {
	return s.transition(ctx, id, []models.DropStatus{models.DropStatusActive}, models.DropStatusCompleted)
}

func (s *dropService) CancelDrop(ctx context.Context, id uuid.UUID) (*models.Drop, error) {
	return s.transition(ctx, id, []models.DropStatus{models.DropStatusUpcoming, models.DropStatusActive}, models.DropStatusCancelled)
}

func (s *dropService) transition(ctx context.Context, id uuid.UUID, from []models.DropStatus, to models.DropStatus) (*models.Drop, error) {
	moved, err := s.repo.Drops.UpdateStatus(ctx, id, from, to, s.now())
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, s.transitionError(ctx, s.repo, id)
	}
	return s.repo.Drops.GetByID(ctx, id)
}

// transitionError distinguishes "no such drop" from "wrong current status".
func (s *dropService) transitionError(ctx context.Context, repo *repository.Repository, id uuid.UUID) error {
	d, err := repo.Drops.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if d == nil {
		return ErrDropNotFound
	}
	return ErrDropStatus
}

func (s *dropService) GetActiveDrop(ctx context.Context) (*models.Drop, []models.DropProduct, error) {
	drop, err := s.repo.Drops.GetActive(ctx, s.now(), s.grace)
	if err != nil {
		return nil, nil, err
	}
	if drop == nil {
		return nil, nil, ErrNoActiveDrop
	}
	menu, err := s.repo.DropProducts.ListByDrop(ctx, drop.ID)
	if err != nil {
		return nil, nil, err
	}
	return drop, menu, nil
}

func (s *dropService) ListDrops(ctx context.Context, f DropListFilter) ([]models.Drop, int64, error) {
	return s.repo.Drops.List(ctx, repository.DropListFilter{
		Status: f.Status,
		Limit:  f.Limit,
		Offset: f.Offset,
	})
}
