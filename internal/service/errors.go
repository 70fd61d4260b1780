package service

import (
	"errors"
	"fmt"
)

var (
	ErrNoActiveDrop      = errors.New("no active drop accepting orders")
	ErrDropNotFound      = errors.New("drop not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrLocationNotFound  = errors.New("location not found")
	ErrProductNotInDrop  = errors.New("item is not part of the drop menu")
	ErrEmptyItems        = errors.New("order items empty")
	ErrInvalidQuantity   = errors.New("quantity must be > 0")
	ErrMissingCustomer   = errors.New("customer name and email are required")
	ErrMissingPickupTime = errors.New("pickup time is required")
	ErrInvalidMenuItem   = errors.New("invalid menu item")
	ErrInvalidDropInput  = errors.New("drop date and pickup deadline are required")
	ErrDropStatus        = errors.New("drop status does not allow this transition")
	ErrPickupDateStale   = errors.New("pickup date does not match the active drop")

	ErrInsufficientStock = errors.New("insufficient stock")
)

// InsufficientStockError reports which cart lines could not be covered so the
// storefront can answer with a sold-out message instead of a generic failure.
// errors.Is(err, ErrInsufficientStock) matches it.
type InsufficientStockError struct {
	Items []ReserveItem
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %d item(s)", len(e.Items))
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }
