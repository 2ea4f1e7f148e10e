package address

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kevini78/hortifrutif/internal/db"
)

var ErrNotFound = errors.New("address not found")

// Repository is the address gateway. Lookups are always scoped to the owner;
// a missing address and someone else's address are indistinguishable.
type Repository interface {
	GetOwned(ctx context.Context, addressID, userID int64) (Address, error)
	GetOwnedTx(ctx context.Context, tx pgx.Tx, addressID, userID int64) (Address, error)
	Insert(ctx context.Context, a Address) (int64, error)
}

type repo struct {
	db db.Querier
}

func NewRepository(q db.Querier) Repository {
	return &repo{db: q}
}

const addressColumns = `id, user_id, street, number, complement, neighborhood, city, state, zip_code, created_at`

func (r *repo) GetOwned(ctx context.Context, addressID, userID int64) (Address, error) {
	return getOwned(ctx, r.db, addressID, userID)
}

func (r *repo) GetOwnedTx(ctx context.Context, tx pgx.Tx, addressID, userID int64) (Address, error) {
	return getOwned(ctx, tx, addressID, userID)
}

func getOwned(ctx context.Context, q db.Querier, addressID, userID int64) (Address, error) {
	var a Address
	err := q.QueryRow(ctx,
		`SELECT `+addressColumns+` FROM addresses WHERE id = $1 AND user_id = $2`,
		addressID, userID,
	).Scan(&a.ID, &a.UserID, &a.Street, &a.Number, &a.Complement,
		&a.Neighborhood, &a.City, &a.State, &a.ZipCode, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Address{}, ErrNotFound
		}
		return Address{}, fmt.Errorf("select address: %w", err)
	}
	return a, nil
}

func (r *repo) Insert(ctx context.Context, a Address) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO addresses (user_id, street, number, complement, neighborhood, city, state, zip_code)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
         RETURNING id`,
		a.UserID, a.Street, a.Number, a.Complement, a.Neighborhood, a.City, a.State, a.ZipCode,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert address: %w", err)
	}
	return id, nil
}
