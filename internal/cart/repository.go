package cart

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kevini78/hortifrutif/internal/db"
)

type Repository interface {
	Items(ctx context.Context, userID int64) ([]Item, error)
	// ItemsTx reads the cart inside the checkout transaction so the
	// reservation works on the same snapshot it validates.
	ItemsTx(ctx context.Context, tx pgx.Tx, userID int64) ([]Item, error)
	// AddItem upserts a line; adding an existing product accumulates quantity.
	AddItem(ctx context.Context, userID int64, item Item) error
	RemoveItem(ctx context.Context, userID, productID int64) (bool, error)
	// Clear empties the cart. Idempotent: clearing an empty cart is not an error.
	Clear(ctx context.Context, userID int64) error
}

type repo struct {
	db db.Querier
}

func NewRepository(q db.Querier) Repository {
	return &repo{db: q}
}

func (r *repo) Items(ctx context.Context, userID int64) ([]Item, error) {
	return items(ctx, r.db, userID)
}

func (r *repo) ItemsTx(ctx context.Context, tx pgx.Tx, userID int64) ([]Item, error) {
	return items(ctx, tx, userID)
}

func items(ctx context.Context, q db.Querier, userID int64) ([]Item, error) {
	rows, err := q.Query(ctx,
		`SELECT product_id, quantity, created_at
         FROM cart_items WHERE user_id = $1
         ORDER BY created_at, product_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("select cart_items: %w", err)
	}
	defer rows.Close()

	var result []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.Quantity, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cart_item: %w", err)
		}
		result = append(result, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return result, nil
}

func (r *repo) AddItem(ctx context.Context, userID int64, item Item) error {
	if item.Quantity < 1 {
		return fmt.Errorf("quantity must be at least 1")
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO cart_items (user_id, product_id, quantity)
         VALUES ($1, $2, $3)
         ON CONFLICT (user_id, product_id)
         DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
		userID, item.ProductID, item.Quantity)
	if err != nil {
		return fmt.Errorf("upsert cart_item: %w", err)
	}
	return nil
}

func (r *repo) RemoveItem(ctx context.Context, userID, productID int64) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`,
		userID, productID)
	if err != nil {
		return false, fmt.Errorf("delete cart_item: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repo) Clear(ctx context.Context, userID int64) error {
	if _, err := r.db.Exec(ctx,
		`DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
