package service

import (
	"context"

	"sandwich-shop-service/internal/models"
	"sandwich-shop-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type menuService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewMenuService(repo *repository.Repository, log *zap.Logger) MenuService {
	return &menuService{repo: repo, log: log}
}

func (s *menuService) GetDropMenu(ctx context.Context, dropID uuid.UUID) (*models.Drop, []models.DropProduct, error) {
	drop, err := s.repo.Drops.GetByID(ctx, dropID)
	if err != nil {
		return nil, nil, err
	}
	if drop == nil {
		return nil, nil, ErrDropNotFound
	}
	menu, err := s.repo.DropProducts.ListByDrop(ctx, dropID)
	if err != nil {
		return nil, nil, err
	}
	return drop, menu, nil
}

// ReplaceDropMenu reconciles the admin's desired product list against the
// existing ledger rows. Rows referenced by order line items are never deleted:
// removal from the menu zeroes their stock so historical orders keep a live
// ledger row and availability reads as zero.
func (s *menuService) ReplaceDropMenu(ctx context.Context, dropID uuid.UUID, items []MenuItemInput) ([]models.DropProduct, error) {
	seen := make(map[uuid.UUID]struct{}, len(items))
	for _, it := range items {
		if it.StockQuantity < 0 || it.SellingPriceCents < 0 {
			return nil, ErrInvalidMenuItem
		}
		if _, dup := seen[it.ProductID]; dup {
			return nil, ErrInvalidMenuItem
		}
		seen[it.ProductID] = struct{}{}
	}

	drop, err := s.repo.Drops.GetByID(ctx, dropID)
	if err != nil {
		return nil, err
	}
	if drop == nil {
		return nil, ErrDropNotFound
	}

	orderCount, err := s.repo.Orders.CountByDrop(ctx, dropID)
	if err != nil {
		return nil, err
	}

	err = s.repo.WithTx(func(tx *repository.Repository) error {
		if orderCount == 0 {
			// Nothing references these rows yet; wholesale replace is safe.
			if _, err := tx.DropProducts.DeleteByDrop(ctx, dropID); err != nil {
				return err
			}
			for _, it := range items {
				dp := models.DropProduct{
					DropID:            dropID,
					ProductID:         it.ProductID,
					StockQuantity:     it.StockQuantity,
					SellingPriceCents: it.SellingPriceCents,
				}
				if err := tx.DropProducts.Create(ctx, &dp); err != nil {
					return err
				}
			}
			return nil
		}

		existing, err := tx.DropProducts.ListByDrop(ctx, dropID)
		if err != nil {
			return err
		}
		desired := make(map[uuid.UUID]MenuItemInput, len(items))
		for _, it := range items {
			desired[it.ProductID] = it
		}

		for _, row := range existing {
			if want, keep := desired[row.ProductID]; keep {
				if _, err := tx.DropProducts.UpdateStockAndPrice(ctx, row.ID, want.StockQuantity, want.SellingPriceCents); err != nil {
					return err
				}
				delete(desired, row.ProductID)
				continue
			}
			referenced, err := tx.DropProducts.HasOrderReferences(ctx, row.ID)
			if err != nil {
				return err
			}
			if referenced {
				if _, err := tx.DropProducts.ZeroStock(ctx, row.ID); err != nil {
					return err
				}
				s.log.Info("menu row retired instead of deleted",
					zap.String("drop_product_id", row.ID.String()))
			} else {
				if _, err := tx.DropProducts.Delete(ctx, row.ID); err != nil {
					return err
				}
			}
		}

		for _, it := range items {
			if _, pending := desired[it.ProductID]; !pending {
				continue
			}
			dp := models.DropProduct{
				DropID:            dropID,
				ProductID:         it.ProductID,
				StockQuantity:     it.StockQuantity,
				SellingPriceCents: it.SellingPriceCents,
			}
			if err := tx.DropProducts.Create(ctx, &dp); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.DropProducts.ListByDrop(ctx, dropID)
}
