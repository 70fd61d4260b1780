package dto

import (
	"time"

	"sandwich-shop-service/internal/models"

	"github.com/google/uuid"
)

type CreateDropRequest struct {
	Date           time.Time `json:"date" binding:"required"`
	LocationID     uuid.UUID `json:"location_id" binding:"required"`
	PickupDeadline time.Time `json:"pickup_deadline" binding:"required"`
}

type DropProductInput struct {
	ProductID         uuid.UUID `json:"product_id" binding:"required"`
	StockQuantity     int32     `json:"stock_quantity" binding:"gte=0"`
	SellingPriceCents int64     `json:"selling_price_cents" binding:"gte=0"`
}

type ReplaceDropMenuRequest struct {
	DropProducts []DropProductInput `json:"dropProducts" binding:"required,dive"`
}

type DropProductResponse struct {
	ID                uuid.UUID `json:"id"`
	ProductID         uuid.UUID `json:"product_id"`
	ProductName       string    `json:"product_name,omitempty"`
	StockQuantity     int32     `json:"stock_quantity"`
	ReservedQuantity  int32     `json:"reserved_quantity"`
	AvailableQuantity int32     `json:"available_quantity"`
	SellingPriceCents int64     `json:"selling_price_cents"`
}

type LocationResponse struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Address string    `json:"address,omitempty"`
}

type DropResponse struct {
	ID              uuid.UUID             `json:"id"`
	Date            time.Time             `json:"date"`
	Status          string                `json:"status"`
	PickupDeadline  time.Time             `json:"pickup_deadline"`
	StatusChangedAt time.Time             `json:"status_changed_at"`
	Location        *LocationResponse     `json:"location,omitempty"`
	Products        []DropProductResponse `json:"products,omitempty"`
}

func ToDropProductResponse(dp models.DropProduct) DropProductResponse {
	name := ""
	if dp.Product != nil {
		name = dp.Product.Name
	}
	return DropProductResponse{
		ID:                dp.ID,
		ProductID:         dp.ProductID,
		ProductName:       name,
		StockQuantity:     dp.StockQuantity,
		ReservedQuantity:  dp.ReservedQuantity,
		AvailableQuantity: dp.AvailableQuantity(),
		SellingPriceCents: dp.SellingPriceCents,
	}
}

func ToDropResponse(d *models.Drop, menu []models.DropProduct) DropResponse {
	resp := DropResponse{
		ID:              d.ID,
		Date:            d.Date,
		Status:          string(d.Status),
		PickupDeadline:  d.PickupDeadline,
		StatusChangedAt: d.StatusChangedAt,
	}
	if d.Location != nil {
		resp.Location = &LocationResponse{
			ID:      d.Location.ID,
			Name:    d.Location.Name,
			Address: d.Location.Address,
		}
	}
	if menu != nil {
		resp.Products = make([]DropProductResponse, 0, len(menu))
		for _, dp := range menu {
			resp.Products = append(resp.Products, ToDropProductResponse(dp))
		}
	}
	return resp
}
