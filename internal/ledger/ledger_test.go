package ledger

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/ecommerce_api/internal/access"
	"github.com/Skotchmaster/ecommerce_api/internal/domain"
	"github.com/Skotchmaster/ecommerce_api/internal/models"
)

// memStore commits a unit by swapping in the copies it mutated.
type memStore struct {
	products map[uint]models.Product
	orders   map[uint]models.Order
	nextID   uint
	failNext error
	// interfere runs once at the start of the next Apply
	interfere func(tx *memTx)
}

func newMemStore(ps ...models.Product) *memStore {
	s := &memStore{products: map[uint]models.Product{}, orders: map[uint]models.Order{}}
	for _, p := range ps {
		s.products[p.ID] = p
	}
	return s
}

func (s *memStore) Atomic(_ context.Context, fn func(tx Tx) error) error {
	tx := &memTx{s: s, products: maps.Clone(s.products), orders: maps.Clone(s.orders), nextID: s.nextID}
	if err := fn(tx); err != nil {
		return err
	}
	s.products, s.orders, s.nextID = tx.products, tx.orders, tx.nextID
	return nil
}

type memTx struct {
	s        *memStore
	products map[uint]models.Product
	orders   map[uint]models.Order
	nextID   uint
}

func (t *memTx) Product(_ context.Context, id uint) (*models.Product, error) {
	p, ok := t.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: product %d", domain.ErrNotFound, id)
	}
	return &p, nil
}

func (t *memTx) Order(_ context.Context, id uint) (*models.Order, error) {
	o, ok := t.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: order %d", domain.ErrNotFound, id)
	}
	return &o, nil
}

func (t *memTx) Apply(_ context.Context, plan Plan) error {
	if f := t.s.interfere; f != nil {
		t.s.interfere = nil
		f(t)
	}
	for _, w := range plan.Stock {
		p := t.products[w.ProductID]
		if p.Version != w.Version {
			return domain.ErrConflict
		}
		p.Stock, p.Version = w.Stock, p.Version+1
		t.products[w.ProductID] = p
	}
	if err := t.s.failNext; err != nil {
		t.s.failNext = nil
		return err
	}
	switch {
	case plan.Insert != nil:
		t.nextID++
		plan.Insert.ID, plan.Insert.Version = t.nextID, 1
		t.orders[plan.Insert.ID] = *plan.Insert
	case plan.Update != nil:
		if t.orders[plan.Update.ID].Version != plan.Update.Version {
			return domain.ErrConflict
		}
		plan.Update.Version++
		t.orders[plan.Update.ID] = *plan.Update
	case plan.Delete != nil:
		delete(t.orders, plan.Delete.ID)
	}
	return nil
}

func uintPtr(v uint) *uint { return &v }

var (
	admin = access.Claim{Role: "admin", ActorID: uintPtr(1)}
	alice = access.Claim{Role: "user", ActorID: uintPtr(7)}
	bob   = access.Claim{Role: "user", ActorID: uintPtr(8)}
)

func newTestLedger(store *memStore) *Ledger {
	l := New(store, access.RolePolicy{})
	l.Now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return l
}

func TestLedger_PlaceThenDeleteRoundTrip(t *testing.T) {
	store := newMemStore(product(1, "10.00", 5))
	l := newTestLedger(store)
	ctx := context.Background()

	order, err := l.PlaceOrder(ctx, alice, PlaceRequest{ProductID: 1, Quantity: 3})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("30.00").Equal(order.TotalAmount))
	assert.EqualValues(t, 7, order.UserID, "owner defaults to the caller")
	assert.Equal(t, 2, store.products[1].Stock)
	require.Len(t, store.orders, 1)

	_, err = l.DeleteOrder(ctx, alice, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, store.products[1].Stock)
	assert.Empty(t, store.orders)

	again, err := l.PlaceOrder(ctx, alice, PlaceRequest{ProductID: 1, Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, 2, store.products[1].Stock)
	_, err = l.DeleteOrder(ctx, admin, again.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, store.products[1].Stock)
}

func TestLedger_PlaceOrderErrors(t *testing.T) {
	store := newMemStore(product(1, "10.00", 5))
	l := newTestLedger(store)
	ctx := context.Background()

	_, err := l.PlaceOrder(ctx, access.Claim{}, PlaceRequest{ProductID: 1, Quantity: 1})
	require.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = l.PlaceOrder(ctx, alice, PlaceRequest{ProductID: 1, Quantity: 0})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = l.PlaceOrder(ctx, alice, PlaceRequest{ProductID: 2, Quantity: 1})
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = l.PlaceOrder(ctx, alice, PlaceRequest{ProductID: 1, Quantity: 6})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, 5, store.products[1].Stock)
	assert.Empty(t, store.orders)
}

func TestLedger_PlaceOrderRollsBackOnInsertFailure(t *testing.T) {
	store := newMemStore(product(1, "10.00", 5))
	store.failNext = errors.New("insert failed")
	l := newTestLedger(store)

	_, err := l.PlaceOrder(context.Background(), alice, PlaceRequest{ProductID: 1, Quantity: 2})
	require.Error(t, err)
	assert.Equal(t, 5, store.products[1].Stock)
	assert.Empty(t, store.orders)
}

func TestLedger_UpdateOrder(t *testing.T) {
	store := newMemStore(product(1, "10.00", 5), product(2, "3.00", 4))
	l := newTestLedger(store)
	ctx := context.Background()

	order, err := l.PlaceOrder(ctx, alice, PlaceRequest{ProductID: 1, Quantity: 3, ShippingAddress: "a"})
	require.NoError(t, err)

	t.Run("same product nets out", func(t *testing.T) {
		updated, err := l.UpdateOrder(ctx, alice, order.ID, Patch{Quantity: 5})
		require.NoError(t, err)
		assert.Equal(t, 0, store.products[1].Stock)
		assert.True(t, decimal.NewFromInt(50).Equal(updated.TotalAmount))

		_, err = l.UpdateOrder(ctx, alice, order.ID, Patch{Quantity: 3})
		require.NoError(t, err)
		assert.Equal(t, 2, store.products[1].Stock)
	})

	t.Run("insufficient target leaves old product as it was", func(t *testing.T) {
		_, err := l.UpdateOrder(ctx, alice, order.ID, Patch{ProductID: 2, Quantity: 5})
		require.ErrorIs(t, err, domain.ErrInsufficientStock)
		assert.Equal(t, 2, store.products[1].Stock)
		assert.Equal(t, 4, store.products[2].Stock)
		assert.EqualValues(t, 1, store.orders[order.ID].ProductID)
	})

	t.Run("move to other product", func(t *testing.T) {
		updated, err := l.UpdateOrder(ctx, admin, order.ID, Patch{ProductID: 2, Quantity: 4, Status: "Paid"})
		require.NoError(t, err)
		assert.Equal(t, 5, store.products[1].Stock)
		assert.Equal(t, 0, store.products[2].Stock)
		assert.EqualValues(t, 2, updated.ProductID)
		assert.Equal(t, "Paid", updated.Status)
		assert.Equal(t, "a", updated.ShippingAddress)
		assert.True(t, decimal.NewFromInt(12).Equal(updated.TotalAmount))
	})

	t.Run("fields only", func(t *testing.T) {
		before := maps.Clone(store.products)
		updated, err := l.UpdateOrder(ctx, alice, order.ID, Patch{ShippingAddress: "b"})
		require.NoError(t, err)
		assert.Equal(t, "b", updated.ShippingAddress)
		assert.Equal(t, before, store.products)
	})

	t.Run("access", func(t *testing.T) {
		_, err := l.UpdateOrder(ctx, bob, order.ID, Patch{Status: "x"})
		require.ErrorIs(t, err, domain.ErrForbidden)

		_, err = l.UpdateOrder(ctx, access.Claim{}, order.ID, Patch{Status: "x"})
		require.ErrorIs(t, err, domain.ErrUnauthenticated)

		_, err = l.UpdateOrder(ctx, admin, 999, Patch{Status: "x"})
		require.ErrorIs(t, err, domain.ErrNotFound)

		_, err = l.UpdateOrder(ctx, admin, order.ID, Patch{ProductID: 42})
		require.ErrorIs(t, err, domain.ErrNotFound)

		_, err = l.UpdateOrder(ctx, admin, order.ID, Patch{Quantity: -1})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestLedger_UpdateOrderOldProductGone(t *testing.T) {
	store := newMemStore(product(1, "10.00", 5), product(2, "1.00", 4))
	l := newTestLedger(store)
	ctx := context.Background()

	order, err := l.PlaceOrder(ctx, alice, PlaceRequest{ProductID: 1, Quantity: 3})
	require.NoError(t, err)
	delete(store.products, 1)

	updated, err := l.UpdateOrder(ctx, alice, order.ID, Patch{ProductID: 2, Quantity: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated.ProductID)
	assert.Equal(t, 2, store.products[2].Stock)
}

func TestLedger_DeleteOrder(t *testing.T) {
	store := newMemStore(product(1, "10.00", 5))
	l := newTestLedger(store)
	ctx := context.Background()

	order, err := l.PlaceOrder(ctx, alice, PlaceRequest{ProductID: 1, Quantity: 2})
	require.NoError(t, err)

	_, err = l.DeleteOrder(ctx, bob, order.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)
	_, err = l.DeleteOrder(ctx, access.Claim{}, order.ID)
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
	_, err = l.DeleteOrder(ctx, admin, 999)
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 3, store.products[1].Stock)

	// the product is gone: restoration is skipped, the order still goes
	delete(store.products, 1)
	deleted, err := l.DeleteOrder(ctx, alice, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, deleted.ID)
	assert.Empty(t, store.orders)
}

func TestLedger_ConflictSurfaces(t *testing.T) {
	store := newMemStore(product(1, "10.00", 5))
	l := newTestLedger(store)
	ctx := context.Background()

	order, err := l.PlaceOrder(ctx, alice, PlaceRequest{ProductID: 1, Quantity: 1})
	require.NoError(t, err)

	// another writer bumps the product between our read and our write
	store.interfere = func(tx *memTx) {
		p := tx.products[1]
		p.Version++
		tx.products[1] = p
	}
	_, err = l.UpdateOrder(ctx, alice, order.ID, Patch{Quantity: 2})
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 4, store.products[1].Stock)
	assert.Equal(t, 1, store.orders[order.ID].Quantity)
}

func TestLedger_StockNeverNegative(t *testing.T) {
	store := newMemStore(product(1, "1.00", 10), product(2, "2.00", 6), product(3, "3.00", 3))
	l := newTestLedger(store)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	var live []uint
	for i := 0; i < 500; i++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(live) == 0:
			o, err := l.PlaceOrder(ctx, alice, PlaceRequest{ProductID: uint(rng.Intn(3) + 1), Quantity: rng.Intn(5) + 1})
			if err == nil {
				live = append(live, o.ID)
			} else {
				require.ErrorIs(t, err, domain.ErrInsufficientStock)
			}
		case op == 1:
			id := live[rng.Intn(len(live))]
			_, err := l.UpdateOrder(ctx, alice, id, Patch{ProductID: uint(rng.Intn(3) + 1), Quantity: rng.Intn(5) + 1})
			if err != nil {
				require.ErrorIs(t, err, domain.ErrInsufficientStock)
			}
		default:
			n := rng.Intn(len(live))
			_, err := l.DeleteOrder(ctx, alice, live[n])
			require.NoError(t, err)
			live = append(live[:n], live[n+1:]...)
		}

		held := map[uint]int{}
		for _, o := range store.orders {
			held[o.ProductID] += o.Quantity
		}
		for id, p := range store.products {
			require.GreaterOrEqual(t, p.Stock, 0)
			initial := map[uint]int{1: 10, 2: 6, 3: 3}[id]
			require.Equal(t, initial, p.Stock+held[id], "stock plus held quantity is conserved for product %d", id)
		}
	}
}
