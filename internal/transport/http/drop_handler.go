package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"sandwich-shop-service/internal/dto"
	"sandwich-shop-service/internal/models"
	"sandwich-shop-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type DropHandler struct {
	drops service.DropService
	menu  service.MenuService
	log   *zap.Logger
}

func NewDropHandler(drops service.DropService, menu service.MenuService, log *zap.Logger) *DropHandler {
	return &DropHandler{drops: drops, menu: menu, log: log}
}

// GetActive returns the currently orderable drop and its menu. This is the
// storefront's landing query.
func (h *DropHandler) GetActive(c *gin.Context) {
	drop, menu, err := h.drops.GetActiveDrop(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoActiveDrop) {
			c.JSON(http.StatusNotFound, dto.NewNotFoundError("no active drop"))
			return
		}
		h.log.Error("get active drop failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}
	c.JSON(http.StatusOK, dto.ToDropResponse(drop, menu))
}

func (h *DropHandler) Create(c *gin.Context) {
	var req dto.CreateDropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}
	drop, err := h.drops.CreateDrop(c.Request.Context(), service.CreateDropInput{
		Date:           req.Date,
		LocationID:     req.LocationID,
		PickupDeadline: req.PickupDeadline,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDropInput):
			c.JSON(http.StatusBadRequest, dto.NewValidationError(err.Error(), nil))
		case errors.Is(err, service.ErrLocationNotFound):
			c.JSON(http.StatusNotFound, dto.NewNotFoundError("location not found"))
		default:
			h.log.Error("create drop failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		}
		return
	}
	c.JSON(http.StatusCreated, dto.ToDropResponse(drop, nil))
}

func (h *DropHandler) List(c *gin.Context) {
	var statusFilter *models.DropStatus
	if s := c.Query("status"); s != "" {
		st := models.DropStatus(s)
		statusFilter = &st
	}
	limit := atoiDefault(c.Query("limit"), 50)
	offset := atoiDefault(c.Query("offset"), 0)

	drops, total, err := h.drops.ListDrops(c.Request.Context(), service.DropListFilter{
		Status: statusFilter,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.log.Error("list drops failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}

	out := make([]dto.DropResponse, 0, len(drops))
	for i := range drops {
		out = append(out, dto.ToDropResponse(&drops[i], nil))
	}
	c.JSON(http.StatusOK, gin.H{"drops": out, "total": total})
}

func (h *DropHandler) Activate(c *gin.Context) { h.lifecycle(c, h.drops.ActivateDrop) }
func (h *DropHandler) Complete(c *gin.Context) { h.lifecycle(c, h.drops.CompleteDrop) }
func (h *DropHandler) Cancel(c *gin.Context)   { h.lifecycle(c, h.drops.CancelDrop) }

func (h *DropHandler) lifecycle(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*models.Drop, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid drop id", nil))
		return
	}
	drop, err := fn(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDropNotFound):
			c.JSON(http.StatusNotFound, dto.NewNotFoundError("drop not found"))
		case errors.Is(err, service.ErrDropStatus):
			c.JSON(http.StatusConflict, dto.NewConflictError("invalid_status", "drop is not in a valid status for this transition"))
		default:
			h.log.Error("drop transition failed", zap.String("drop_id", id.String()), zap.Error(err))
			c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToDropResponse(drop, nil))
}

func (h *DropHandler) GetMenu(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid drop id", nil))
		return
	}
	drop, menu, err := h.menu.GetDropMenu(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrDropNotFound) {
			c.JSON(http.StatusNotFound, dto.NewNotFoundError("drop not found"))
			return
		}
		h.log.Error("get drop menu failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}
	c.JSON(http.StatusOK, dto.ToDropResponse(drop, menu))
}

// ReplaceMenu handles PUT of the drop's full product list from the admin
// editor. Rows referenced by orders are retired by zeroing stock, never
// deleted.
func (h *DropHandler) ReplaceMenu(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid drop id", nil))
		return
	}
	var req dto.ReplaceDropMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	items := make([]service.MenuItemInput, 0, len(req.DropProducts))
	for _, in := range req.DropProducts {
		items = append(items, service.MenuItemInput{
			ProductID:         in.ProductID,
			StockQuantity:     in.StockQuantity,
			SellingPriceCents: in.SellingPriceCents,
		})
	}

	menu, err := h.menu.ReplaceDropMenu(c.Request.Context(), id, items)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDropNotFound):
			c.JSON(http.StatusNotFound, dto.NewNotFoundError("drop not found"))
		case errors.Is(err, service.ErrInvalidMenuItem):
			c.JSON(http.StatusBadRequest, dto.NewValidationError(err.Error(), nil))
		default:
			h.log.Error("replace drop menu failed", zap.String("drop_id", id.String()), zap.Error(err))
			c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		}
		return
	}

	out := make([]dto.DropProductResponse, 0, len(menu))
	for _, dp := range menu {
		out = append(out, dto.ToDropProductResponse(dp))
	}
	c.JSON(http.StatusOK, gin.H{"dropProducts": out})
}

func (h *DropHandler) CreateLocation(c *gin.Context) {
	var req struct {
		Name    string `json:"name" binding:"required"`
		Address string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}
	loc, err := h.drops.CreateLocation(c.Request.Context(), req.Name, req.Address)
	if err != nil {
		h.log.Error("create location failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}
	c.JSON(http.StatusCreated, dto.LocationResponse{ID: loc.ID, Name: loc.Name, Address: loc.Address})
}

func (h *DropHandler) ListLocations(c *gin.Context) {
	locs, err := h.drops.ListLocations(c.Request.Context())
	if err != nil {
		h.log.Error("list locations failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}
	out := make([]dto.LocationResponse, 0, len(locs))
	for _, l := range locs {
		out = append(out, dto.LocationResponse{ID: l.ID, Name: l.Name, Address: l.Address})
	}
	c.JSON(http.StatusOK, gin.H{"locations": out})
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}
