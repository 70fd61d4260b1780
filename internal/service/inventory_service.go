package service

import (
	"bytes"
	"context"
	"sort"

	"sandwich-shop-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type inventoryService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewInventoryService(repo *repository.Repository, log *zap.Logger) InventoryService {
	return &inventoryService{repo: repo, log: log}
}

// mergeItems validates quantities and collapses duplicate drop product IDs
// into a single line, preserving first-seen order.
func mergeItems(items []ReserveItem) ([]ReserveItem, error) {
	merged := make([]ReserveItem, 0, len(items))
	index := make(map[uuid.UUID]int, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if i, ok := index[it.DropProductID]; ok {
			merged[i].Quantity += it.Quantity
			continue
		}
		index[it.DropProductID] = len(merged)
		merged = append(merged, it)
	}
	return merged, nil
}

// prepareBatch merges a cart into ledger lines and puts them in a fixed
// order. Row locks inside the batch transaction are then always taken in
// the same sequence, so two concurrent carts holding the same products in
// inverse order cannot deadlock each other.
func prepareBatch(items []ReserveItem) ([]ReserveItem, error) {
	merged, err := mergeItems(items)
	if err != nil {
		return nil, err
	}
	sort.Slice(merged, func(i, j int) bool {
		return bytes.Compare(merged[i].DropProductID[:], merged[j].DropProductID[:]) < 0
	})
	return merged, nil
}

func (s *inventoryService) ReserveMultiple(ctx context.Context, items []ReserveItem) error {
	if len(items) == 0 {
		return ErrEmptyItems
	}
	merged, err := prepareBatch(items)
	if err != nil {
		return err
	}

	// The whole batch runs in one transaction: a single uncoverable line
	// aborts it and the rollback discards every increment already applied.
	err = s.repo.WithTx(func(tx *repository.Repository) error {
		var failed []ReserveItem
		for _, it := range merged {
			ok, err := tx.DropProducts.TryReserve(ctx, it.DropProductID, it.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				failed = append(failed, it)
			}
		}
		if len(failed) > 0 {
			return &InsufficientStockError{Items: failed}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("inventory reserved", zap.Int("lines", len(merged)))
	return nil
}

func (s *inventoryService) ReleaseMultiple(ctx context.Context, items []ReserveItem) error {
	if len(items) == 0 {
		return nil
	}
	merged, err := prepareBatch(items)
	if err != nil {
		return err
	}

	err = s.repo.WithTx(func(tx *repository.Repository) error {
		for _, it := range merged {
			found, err := tx.DropProducts.Release(ctx, it.DropProductID, it.Quantity)
			if err != nil {
				return err
			}
			if !found {
				// A missing row is not worth failing a compensation path over.
				s.log.Warn("release skipped: ledger row missing",
					zap.String("drop_product_id", it.DropProductID.String()))
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("inventory released", zap.Int("lines", len(merged)))
	return nil
}
