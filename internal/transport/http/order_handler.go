package http

import (
	"errors"
	"net/http"

	"sandwich-shop-service/internal/dto"
	"sandwich-shop-service/internal/models"
	"sandwich-shop-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orders service.OrderService
	log    *zap.Logger
}

func NewOrderHandler(orders service.OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, log: log}
}

// Create handles POST /api/orders: the pay-later checkout path that creates a
// pending, fully reserved order.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid order request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	items := make([]service.ReserveItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, service.ReserveItem{DropProductID: it.ID, Quantity: it.Quantity})
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), service.CreateOrderInput{
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		PickupTime:      req.PickupTime,
		PickupDate:      req.PickupDate,
		Instructions:    req.SpecialInstructions,
		Items:           items,
		TotalCents:      req.TotalAmount,
		PaymentIntentID: req.PaymentIntentID,
	})
	if err != nil {
		h.writeOrderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.CreateOrderResponse{
		Success: true,
		Order: dto.OrderSummary{
			ID:          order.ID,
			OrderNumber: order.OrderNumber,
			PublicCode:  order.PublicCode,
			Status:      string(order.Status),
		},
	})
}

func (h *OrderHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid order id", nil))
		return
	}
	order, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, dto.NewNotFoundError("order not found"))
			return
		}
		h.log.Error("get order failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}
	c.JSON(http.StatusOK, dto.ToOrderResponse(order))
}

// GetByIntent backs the confirmation page's bounded polling for the
// webhook-created order.
func (h *OrderHandler) GetByIntent(c *gin.Context) {
	intentID := c.Param("paymentIntentId")
	if intentID == "" {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("missing payment intent id", nil))
		return
	}
	order, err := h.orders.GetOrderByPaymentIntent(c.Request.Context(), intentID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, dto.NewNotFoundError("order not found"))
			return
		}
		h.log.Error("get order by intent failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}
	c.JSON(http.StatusOK, dto.ToOrderResponse(order))
}

// List is the admin view of orders, filterable by drop and status.
func (h *OrderHandler) List(c *gin.Context) {
	var dropID *uuid.UUID
	if s := c.Query("drop_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid drop_id filter", nil))
			return
		}
		dropID = &id
	}
	var status *models.OrderStatus
	if s := c.Query("status"); s != "" {
		st := models.OrderStatus(s)
		status = &st
	}
	limit := atoiDefault(c.Query("limit"), 50)
	offset := atoiDefault(c.Query("offset"), 0)

	orders, total, err := h.orders.ListOrders(c.Request.Context(), dropID, status, limit, offset)
	if err != nil {
		h.log.Error("list orders failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}

	out := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, dto.ToOrderResponse(o))
	}
	c.JSON(http.StatusOK, gin.H{"orders": out, "total": total})
}

func (h *OrderHandler) writeOrderError(c *gin.Context, err error) {
	var stockErr *service.InsufficientStockError

	switch {
	case errors.As(err, &stockErr):
		ids := make([]string, 0, len(stockErr.Items))
		for _, it := range stockErr.Items {
			ids = append(ids, it.DropProductID.String())
		}
		h.log.Info("order rejected: insufficient stock", zap.Strings("drop_product_ids", ids))
		resp := dto.NewConflictError("insufficient_stock", "some items are no longer available")
		for _, id := range ids {
			resp.Fields = append(resp.Fields, dto.FieldError{Field: id, Message: "sold out"})
		}
		c.JSON(http.StatusConflict, resp)

	case errors.Is(err, service.ErrNoActiveDrop):
		c.JSON(http.StatusConflict, dto.NewConflictError("no_active_drop", "ordering is closed right now"))

	case errors.Is(err, service.ErrPickupDateStale):
		c.JSON(http.StatusConflict, dto.NewConflictError("pickup_date_stale", "the menu has changed since this page was loaded"))

	case errors.Is(err, service.ErrEmptyItems),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrMissingCustomer),
		errors.Is(err, service.ErrMissingPickupTime),
		errors.Is(err, service.ErrProductNotInDrop):
		c.JSON(http.StatusBadRequest, dto.NewValidationError(err.Error(), nil))

	default:
		h.log.Error("order creation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError("failed to place order"))
	}
}
