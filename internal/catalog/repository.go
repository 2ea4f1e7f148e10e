package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kevini78/hortifrutif/internal/db"
)

var ErrNotFound = errors.New("product not found")

// Repository is the catalog gateway: product lookup plus the one stock
// mutation primitive the checkout engine is allowed to use.
type Repository interface {
	Get(ctx context.Context, productID int64) (Product, error)
	// GetForUpdate locks the product row for the duration of tx. Two
	// concurrent checkouts of the same product serialize on this lock.
	GetForUpdate(ctx context.Context, tx pgx.Tx, productID int64) (Product, error)
	// AdjustStock applies stock = stock + delta atomically. Delta is
	// negative on reservation, positive on compensation.
	AdjustStock(ctx context.Context, tx pgx.Tx, productID int64, delta int) error
	Insert(ctx context.Context, p Product) (int64, error)
}

type repo struct {
	db db.Querier
}

func NewRepository(q db.Querier) Repository {
	return &repo{db: q}
}

const productColumns = `id, name, description, price, category, stock, is_active, created_at, updated_at`

func (r *repo) Get(ctx context.Context, productID int64) (Product, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, productID)
	return scanProduct(row)
}

func (r *repo) GetForUpdate(ctx context.Context, tx pgx.Tx, productID int64) (Product, error) {
	row := tx.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, productID)
	return scanProduct(row)
}

func (r *repo) AdjustStock(ctx context.Context, tx pgx.Tx, productID int64, delta int) error {
	tag, err := tx.Exec(ctx,
		`UPDATE products SET stock = stock + $2, updated_at = now() WHERE id = $1`,
		productID, delta)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) Insert(ctx context.Context, p Product) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO products (name, description, price, category, stock, is_active)
         VALUES ($1, $2, $3, $4, $5, $6)
         RETURNING id`,
		p.Name, p.Description, p.Price, p.Category, p.Stock, p.IsActive,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert product: %w", err)
	}
	return id, nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category,
		&p.Stock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("scan product: %w", err)
	}
	return p, nil
}
