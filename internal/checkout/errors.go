package checkout

import (
	"errors"
	"fmt"

	"github.com/kevini78/hortifrutif/internal/order"
)

var (
	ErrEmptyCart = errors.New("cart is empty, nothing to checkout")
	// ErrAddressNotFound covers both a missing address and one owned by
	// another user.
	ErrAddressNotFound = errors.New("address not found or not owned by user")
	// ErrOrderNotFound covers both a missing order and one owned by another
	// user, so existence is not leaked to non-owners.
	ErrOrderNotFound = errors.New("order not found")
)

// ProductNotFoundError: a cart line references a product that no longer exists.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// InsufficientStockError: the first cart line whose requested quantity
// exceeds live stock. Nothing is reserved when this is returned.
type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// InvalidTransitionError: the order's current status does not allow the
// attempted transition.
type InvalidTransitionError struct {
	From order.Status
	To   order.Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order status transition %s -> %s", e.From, e.To)
}
