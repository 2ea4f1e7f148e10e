package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/kevini78/hortifrutif/internal/address"
	"github.com/kevini78/hortifrutif/internal/cart"
	"github.com/kevini78/hortifrutif/internal/catalog"
	"github.com/kevini78/hortifrutif/internal/db"
	"github.com/kevini78/hortifrutif/internal/order"
)

// EventPublisher emits domain events after a transaction has committed.
// Publishing is best-effort; failures are logged, never surfaced.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, o *order.Order) error
	PublishOrderCancelled(ctx context.Context, o *order.Order) error
}

// Service converts carts into orders and back. Every mutating operation runs
// under one database transaction: stock movement and order rows commit or
// roll back together.
type Service struct {
	pool      db.TxBeginner
	catalog   catalog.Repository
	carts     cart.Repository
	addresses address.Repository
	orders    order.Repository
	publisher EventPublisher
	logger    *log.Logger
}

func NewService(
	pool db.TxBeginner,
	catalogRepo catalog.Repository,
	cartRepo cart.Repository,
	addressRepo address.Repository,
	orderRepo order.Repository,
	publisher EventPublisher,
	logger *log.Logger,
) *Service {
	return &Service{
		pool:      pool,
		catalog:   catalogRepo,
		carts:     cartRepo,
		addresses: addressRepo,
		orders:    orderRepo,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateOrder turns userID's cart into a persisted order delivered to
// addressID. Stock is reserved (decremented) for every line and item
// name/price are snapshotted, all in one transaction. The cart is cleared
// only after the transaction commits; a clear failure does not undo the order.
func (s *Service) CreateOrder(ctx context.Context, userID, addressID int64, paymentMethod string) (order.Order, error) {
	var created order.Order

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return created, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	items, err := s.carts.ItemsTx(ctx, tx, userID)
	if err != nil {
		return created, fmt.Errorf("load cart: %w", err)
	}
	if len(items) == 0 {
		return created, ErrEmptyCart
	}

	if _, err := s.addresses.GetOwnedTx(ctx, tx, addressID, userID); err != nil {
		if errors.Is(err, address.ErrNotFound) {
			return created, ErrAddressNotFound
		}
		return created, fmt.Errorf("load address: %w", err)
	}

	total := decimal.Zero
	orderItems := make([]order.Item, 0, len(items))

	for _, it := range items {
		// Lock the product row so concurrent checkouts of the same product
		// serialize here and cannot both pass the stock check.
		p, err := s.catalog.GetForUpdate(ctx, tx, it.ProductID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return created, &ProductNotFoundError{ProductID: it.ProductID}
			}
			return created, fmt.Errorf("load product %d: %w", it.ProductID, err)
		}

		if p.Stock < it.Quantity {
			return created, &InsufficientStockError{
				ProductID: p.ID,
				Requested: it.Quantity,
				Available: p.Stock,
			}
		}

		if err := s.catalog.AdjustStock(ctx, tx, p.ID, -it.Quantity); err != nil {
			return created, fmt.Errorf("reserve stock for product %d: %w", p.ID, err)
		}

		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		orderItems = append(orderItems, order.Item{
			ProductID:   p.ID,
			ProductName: p.Name,
			UnitPrice:   p.Price,
			Quantity:    it.Quantity,
		})
	}

	created = order.Order{
		UserID:        userID,
		AddressID:     addressID,
		Items:         orderItems,
		TotalAmount:   total,
		Status:        order.StatusPendingPayment,
		PaymentMethod: paymentMethod,
	}
	if err := s.orders.CreateTx(ctx, tx, &created); err != nil {
		return order.Order{}, fmt.Errorf("create order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return order.Order{}, fmt.Errorf("commit: %w", err)
	}

	// The order is committed; cart clearing must not roll it back.
	if err := s.carts.Clear(ctx, userID); err != nil {
		s.logger.Printf("clear cart for user %d after order %d: %v", userID, created.ID, err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishOrderCreated(ctx, &created); err != nil {
			s.logger.Printf("publish order.created for order %d: %v", created.ID, err)
		}
	}

	return created, nil
}

// ConfirmPayment transitions PENDING_PAYMENT -> PROCESSING. The transition is
// a compare-and-set, so a second confirmation loses the race and reports the
// invalid transition.
func (s *Service) ConfirmPayment(ctx context.Context, orderID int64) (order.Order, error) {
	updated, err := s.orders.UpdateStatusIf(ctx, orderID, order.StatusPendingPayment, order.StatusProcessing)
	if err != nil {
		return order.Order{}, fmt.Errorf("confirm payment: %w", err)
	}

	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return order.Order{}, ErrOrderNotFound
		}
		return order.Order{}, fmt.Errorf("load order: %w", err)
	}

	if !updated {
		return order.Order{}, &InvalidTransitionError{From: o.Status, To: order.StatusProcessing}
	}

	return o, nil
}

// CancelOrder compensates the stock reservation of an order still in
// PENDING_PAYMENT or PROCESSING and marks it CANCELLED, atomically. The
// compensation is computed from the persisted item snapshots, not from the
// cart or the live catalog.
func (s *Service) CancelOrder(ctx context.Context, orderID, userID int64) (order.Order, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return order.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o, err := s.orders.GetForUpdateTx(ctx, tx, orderID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return order.Order{}, ErrOrderNotFound
		}
		return order.Order{}, fmt.Errorf("load order: %w", err)
	}
	if o.UserID != userID {
		return order.Order{}, ErrOrderNotFound
	}

	if !o.Status.Cancellable() {
		return order.Order{}, &InvalidTransitionError{From: o.Status, To: order.StatusCancelled}
	}

	for _, it := range o.Items {
		if err := s.catalog.AdjustStock(ctx, tx, it.ProductID, it.Quantity); err != nil {
			return order.Order{}, fmt.Errorf("restore stock for product %d: %w", it.ProductID, err)
		}
	}

	if err := s.orders.UpdateStatusTx(ctx, tx, orderID, order.StatusCancelled); err != nil {
		return order.Order{}, fmt.Errorf("mark cancelled: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return order.Order{}, fmt.Errorf("commit: %w", err)
	}

	o.Status = order.StatusCancelled

	if s.publisher != nil {
		if err := s.publisher.PublishOrderCancelled(ctx, &o); err != nil {
			s.logger.Printf("publish order.cancelled for order %d: %v", o.ID, err)
		}
	}

	return o, nil
}

// GetOrder returns an order scoped to its owner.
func (s *Service) GetOrder(ctx context.Context, orderID, userID int64) (order.Order, error) {
	o, err := s.orders.GetForUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return order.Order{}, ErrOrderNotFound
		}
		return order.Order{}, fmt.Errorf("load order: %w", err)
	}
	return o, nil
}

func (s *Service) ListOrders(ctx context.Context, userID int64) ([]order.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}
