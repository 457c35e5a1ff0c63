package billing

import (
	"errors"
	"fmt"
)

// Precondition violations surfaced at commit time. None of these are retried
// internally; callers block the action and prompt correction.
var (
	ErrNoCustomer  = errors.New("customer_required")
	ErrEmptyCart   = errors.New("empty_cart")
	ErrBadQuantity = errors.New("invalid_quantity")
)

// InsufficientStockError names the line that cannot be fulfilled so the caller
// can point the user at the offending product and pack.
type InsufficientStockError struct {
	ProductName string
	PackSize    string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (%s): requested %d, available %d",
		e.ProductName, e.PackSize, e.Requested, e.Available)
}
