package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/kevini78/hortifrutif/internal/address"
	"github.com/kevini78/hortifrutif/internal/cart"
	"github.com/kevini78/hortifrutif/internal/catalog"
	"github.com/kevini78/hortifrutif/internal/order"
)

// fakeTx stages mutations and applies them on Commit, so tests can assert
// that nothing leaks out of a rolled-back transaction. The embedded pgx.Tx
// is never called.
type fakeTx struct {
	pgx.Tx

	pending    []func()
	committed  bool
	rolledBack bool
	commitErr  error
}

func (tx *fakeTx) Commit(ctx context.Context) error {
	if tx.commitErr != nil {
		return tx.commitErr
	}
	for _, apply := range tx.pending {
		apply()
	}
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback(ctx context.Context) error {
	if !tx.committed {
		tx.rolledBack = true
	}
	return nil
}

type fakeDB struct {
	beginErr  error
	commitErr error
	lastTx    *fakeTx
}

func (db *fakeDB) BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
	if db.beginErr != nil {
		return nil, db.beginErr
	}
	tx := &fakeTx{commitErr: db.commitErr}
	db.lastTx = tx
	return tx, nil
}

func stage(t *testing.T, tx pgx.Tx, apply func()) {
	t.Helper()
	ftx, ok := tx.(*fakeTx)
	if !ok {
		t.Fatalf("expected *fakeTx, got %T", tx)
	}
	ftx.pending = append(ftx.pending, apply)
}

type fakeCatalog struct {
	t        *testing.T
	products map[int64]*catalog.Product
}

func newFakeCatalog(t *testing.T, products ...catalog.Product) *fakeCatalog {
	m := make(map[int64]*catalog.Product, len(products))
	for _, p := range products {
		cp := p
		m[p.ID] = &cp
	}
	return &fakeCatalog{t: t, products: m}
}

func (f *fakeCatalog) Get(ctx context.Context, productID int64) (catalog.Product, error) {
	p, ok := f.products[productID]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return *p, nil
}

func (f *fakeCatalog) GetForUpdate(ctx context.Context, tx pgx.Tx, productID int64) (catalog.Product, error) {
	return f.Get(ctx, productID)
}

func (f *fakeCatalog) AdjustStock(ctx context.Context, tx pgx.Tx, productID int64, delta int) error {
	p, ok := f.products[productID]
	if !ok {
		return catalog.ErrNotFound
	}
	stage(f.t, tx, func() { p.Stock += delta })
	return nil
}

func (f *fakeCatalog) Insert(ctx context.Context, p catalog.Product) (int64, error) {
	cp := p
	f.products[p.ID] = &cp
	return p.ID, nil
}

func (f *fakeCatalog) stock(productID int64) int {
	return f.products[productID].Stock
}

type fakeCarts struct {
	items    map[int64][]cart.Item
	clearErr error
	cleared  []int64
}

func newFakeCarts() *fakeCarts {
	return &fakeCarts{items: make(map[int64][]cart.Item)}
}

func (f *fakeCarts) Items(ctx context.Context, userID int64) ([]cart.Item, error) {
	return append([]cart.Item(nil), f.items[userID]...), nil
}

func (f *fakeCarts) ItemsTx(ctx context.Context, tx pgx.Tx, userID int64) ([]cart.Item, error) {
	return f.Items(ctx, userID)
}

func (f *fakeCarts) AddItem(ctx context.Context, userID int64, item cart.Item) error {
	f.items[userID] = append(f.items[userID], item)
	return nil
}

func (f *fakeCarts) RemoveItem(ctx context.Context, userID, productID int64) (bool, error) {
	items := f.items[userID]
	for i, it := range items {
		if it.ProductID == productID {
			f.items[userID] = append(items[:i], items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCarts) Clear(ctx context.Context, userID int64) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	delete(f.items, userID)
	f.cleared = append(f.cleared, userID)
	return nil
}

type fakeAddresses struct {
	addresses map[int64]address.Address
}

func newFakeAddresses(addrs ...address.Address) *fakeAddresses {
	m := make(map[int64]address.Address, len(addrs))
	for _, a := range addrs {
		m[a.ID] = a
	}
	return &fakeAddresses{addresses: m}
}

func (f *fakeAddresses) GetOwned(ctx context.Context, addressID, userID int64) (address.Address, error) {
	a, ok := f.addresses[addressID]
	if !ok || a.UserID != userID {
		return address.Address{}, address.ErrNotFound
	}
	return a, nil
}

func (f *fakeAddresses) GetOwnedTx(ctx context.Context, tx pgx.Tx, addressID, userID int64) (address.Address, error) {
	return f.GetOwned(ctx, addressID, userID)
}

func (f *fakeAddresses) Insert(ctx context.Context, a address.Address) (int64, error) {
	f.addresses[a.ID] = a
	return a.ID, nil
}

type fakeOrders struct {
	t      *testing.T
	store  map[int64]order.Order
	nextID int64
}

func newFakeOrders(t *testing.T) *fakeOrders {
	return &fakeOrders{t: t, store: make(map[int64]order.Order), nextID: 1}
}

func (f *fakeOrders) put(o order.Order) {
	if o.ID >= f.nextID {
		f.nextID = o.ID + 1
	}
	f.store[o.ID] = o
}

func (f *fakeOrders) CreateTx(ctx context.Context, tx pgx.Tx, o *order.Order) error {
	if len(o.Items) == 0 {
		return errors.New("no items in order")
	}
	o.ID = f.nextID
	f.nextID++
	persisted := *o
	persisted.Items = append([]order.Item(nil), o.Items...)
	stage(f.t, tx, func() { f.store[persisted.ID] = persisted })
	return nil
}

func (f *fakeOrders) GetByID(ctx context.Context, orderID int64) (order.Order, error) {
	o, ok := f.store[orderID]
	if !ok {
		return order.Order{}, order.ErrNotFound
	}
	return o, nil
}

func (f *fakeOrders) GetForUser(ctx context.Context, orderID, userID int64) (order.Order, error) {
	o, ok := f.store[orderID]
	if !ok || o.UserID != userID {
		return order.Order{}, order.ErrNotFound
	}
	return o, nil
}

func (f *fakeOrders) GetForUpdateTx(ctx context.Context, tx pgx.Tx, orderID int64) (order.Order, error) {
	return f.GetByID(ctx, orderID)
}

func (f *fakeOrders) ListByUser(ctx context.Context, userID int64) ([]order.Order, error) {
	var result []order.Order
	for _, o := range f.store {
		if o.UserID == userID {
			result = append(result, o)
		}
	}
	return result, nil
}

func (f *fakeOrders) UpdateStatusIf(ctx context.Context, orderID int64, from, to order.Status) (bool, error) {
	o, ok := f.store[orderID]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	f.store[orderID] = o
	return true, nil
}

func (f *fakeOrders) UpdateStatusTx(ctx context.Context, tx pgx.Tx, orderID int64, to order.Status) error {
	if _, ok := f.store[orderID]; !ok {
		return order.ErrNotFound
	}
	stage(f.t, tx, func() {
		o := f.store[orderID]
		o.Status = to
		f.store[orderID] = o
	})
	return nil
}

type fakePublisher struct {
	created   []int64
	cancelled []int64
	err       error
}

func (f *fakePublisher) PublishOrderCreated(ctx context.Context, o *order.Order) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, o.ID)
	return nil
}

func (f *fakePublisher) PublishOrderCancelled(ctx context.Context, o *order.Order) error {
	if f.err != nil {
		return f.err
	}
	f.cancelled = append(f.cancelled, o.ID)
	return nil
}
