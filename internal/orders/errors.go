package orders

import (
	"errors"
	"fmt"
)

var (
	ErrTableNotFound        = errors.New("table not found")
	ErrTableNumberTaken     = errors.New("table number already exists")
	ErrTableHasActiveOrders = errors.New("table has active orders")
	ErrInvalidTable         = errors.New("table number and capacity must be positive")
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderItemNotFound    = errors.New("order item not found")
	ErrOrderCompleted       = errors.New("order is already completed")
	ErrMenuItemNotFound     = errors.New("menu item not found")
	ErrModifierNotFound     = errors.New("modifier not found")
	ErrInvalidQuantity      = errors.New("quantity must be at least 1")
	ErrNoItems              = errors.New("at least one item is required")
	ErrInvalidStatus        = errors.New("invalid order status")
	ErrInvalidTransition    = errors.New("status transition not allowed")
	ErrDiscountExists       = errors.New("order already has a discount")
	ErrDiscountNotFound     = errors.New("order has no discount")
	ErrInvalidDiscount      = errors.New("invalid discount")
	ErrInvalidAycePrice     = errors.New("ayce price cannot be negative")
)

// ItemUnavailableError is returned when an item cannot be ordered right now,
// either because it is switched off or because of the meal period.
type ItemUnavailableError struct {
	MenuItemID uint
	Name       string
	Reason     string
}

func (e *ItemUnavailableError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.Name, e.Reason)
	}
	return fmt.Sprintf("%s: Menu item is not available", e.Name)
}

// ModifierUnavailableError is returned when a modifier that has been
// switched off is attached to an order item.
type ModifierUnavailableError struct {
	ModifierID uint
	Name       string
}

func (e *ModifierUnavailableError) Error() string {
	return fmt.Sprintf("%s: Modifier is not available", e.Name)
}
