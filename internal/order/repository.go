package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kevini78/hortifrutif/internal/db"
)

var ErrNotFound = errors.New("order not found")

type Repository interface {
	// CreateTx inserts the order and all item snapshots inside tx and fills
	// in the generated id and timestamps.
	CreateTx(ctx context.Context, tx pgx.Tx, o *Order) error
	// GetByID is unscoped; for service-internal use such as payment confirmation.
	GetByID(ctx context.Context, orderID int64) (Order, error)
	// GetForUser returns ErrNotFound both when the order does not exist and
	// when it belongs to someone else.
	GetForUser(ctx context.Context, orderID, userID int64) (Order, error)
	// GetForUpdateTx locks the order row for the duration of tx.
	GetForUpdateTx(ctx context.Context, tx pgx.Tx, orderID int64) (Order, error)
	ListByUser(ctx context.Context, userID int64) ([]Order, error)
	// UpdateStatusIf is a compare-and-set transition; it reports false when
	// the order was not in the expected status.
	UpdateStatusIf(ctx context.Context, orderID int64, from, to Status) (bool, error)
	UpdateStatusTx(ctx context.Context, tx pgx.Tx, orderID int64, to Status) error
}

type repo struct {
	db db.Querier
}

func NewRepository(q db.Querier) Repository {
	return &repo{db: q}
}

const orderColumns = `id, user_id, address_id, total_amount, status, COALESCE(payment_method, ''), created_at, updated_at`

func (r *repo) CreateTx(ctx context.Context, tx pgx.Tx, o *Order) error {
	if len(o.Items) == 0 {
		return errors.New("no items in order")
	}

	var paymentMethod *string
	if o.PaymentMethod != "" {
		paymentMethod = &o.PaymentMethod
	}

	err := tx.QueryRow(ctx,
		`INSERT INTO orders (user_id, address_id, total_amount, status, payment_method)
         VALUES ($1, $2, $3, $4, $5)
         RETURNING id, created_at, updated_at`,
		o.UserID, o.AddressID, o.TotalAmount, o.Status, paymentMethod,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range o.Items {
		it := &o.Items[i]
		err := tx.QueryRow(ctx,
			`INSERT INTO order_items (order_id, product_id, product_name, unit_price, quantity)
             VALUES ($1, $2, $3, $4, $5)
             RETURNING id`,
			o.ID, it.ProductID, it.ProductName, it.UnitPrice, it.Quantity,
		).Scan(&it.ID)
		if err != nil {
			return fmt.Errorf("insert order_item: %w", err)
		}
	}

	return nil
}

func (r *repo) GetByID(ctx context.Context, orderID int64) (Order, error) {
	return getOrder(ctx, r.db,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID)
}

func (r *repo) GetForUser(ctx context.Context, orderID, userID int64) (Order, error) {
	return getOrder(ctx, r.db,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND user_id = $2`,
		orderID, userID)
}

func (r *repo) GetForUpdateTx(ctx context.Context, tx pgx.Tx, orderID int64) (Order, error) {
	return getOrder(ctx, tx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, orderID)
}

func getOrder(ctx context.Context, q db.Querier, query string, args ...any) (Order, error) {
	var o Order
	err := q.QueryRow(ctx, query, args...).Scan(
		&o.ID, &o.UserID, &o.AddressID, &o.TotalAmount, &o.Status,
		&o.PaymentMethod, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, fmt.Errorf("select order: %w", err)
	}

	items, err := orderItems(ctx, q, o.ID)
	if err != nil {
		return Order{}, err
	}
	o.Items = items

	return o, nil
}

func orderItems(ctx context.Context, q db.Querier, orderID int64) ([]Item, error) {
	rows, err := q.Query(ctx,
		`SELECT id, product_id, product_name, unit_price, quantity
         FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("select order_items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.ProductID, &it.ProductName, &it.UnitPrice, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan order_item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return items, nil
}

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]Order, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1
         ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.AddressID, &o.TotalAmount,
			&o.Status, &o.PaymentMethod, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	for i := range orders {
		items, err := orderItems(ctx, r.db, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return orders, nil
}

func (r *repo) UpdateStatusIf(ctx context.Context, orderID int64, from, to Status) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE orders SET status = $3, updated_at = now()
         WHERE id = $1 AND status = $2`,
		orderID, from, to)
	if err != nil {
		return false, fmt.Errorf("update status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repo) UpdateStatusTx(ctx context.Context, tx pgx.Tx, orderID int64, to Status) error {
	tag, err := tx.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`,
		orderID, to)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
