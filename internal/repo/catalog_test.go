package repo_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/ecommerce_api/internal/domain"
	"github.com/Skotchmaster/ecommerce_api/internal/ledger"
	"github.com/Skotchmaster/ecommerce_api/internal/models"
	"github.com/Skotchmaster/ecommerce_api/internal/repo"
)

func TestDeleteProduct_Cascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	gone := env.product(t, "Gone", "1.00", 10)
	kept := env.product(t, "Kept", "1.00", 10)

	for _, id := range []uint{gone.ID, gone.ID, kept.ID} {
		_, err := env.Ledger.PlaceOrder(ctx, user, ledger.PlaceRequest{ProductID: id, Quantity: 1})
		require.NoError(t, err)
	}
	require.NoError(t, env.Repo.AddToCart(ctx, &models.CartItem{UserID: 7, ProductID: gone.ID, Quantity: 1}))
	require.NoError(t, env.Repo.AddToCart(ctx, &models.CartItem{UserID: 7, ProductID: kept.ID, Quantity: 1}))

	res, err := env.Repo.DeleteProduct(ctx, gone.ID)
	require.NoError(t, err)
	assert.Equal(t, repo.CascadeResult{Orders: 2, CartItems: 1}, res)

	_, err = env.Repo.GetProduct(ctx, gone.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.EqualValues(t, 0, env.count(t, &models.Order{}, "product_id = ?", gone.ID))
	assert.EqualValues(t, 0, env.count(t, &models.CartItem{}, "product_id = ?", gone.ID))
	assert.EqualValues(t, 1, env.count(t, &models.Order{}, "product_id = ?", kept.ID))
	assert.EqualValues(t, 1, env.count(t, &models.CartItem{}, "product_id = ?", kept.ID))
}

func TestDeleteProduct_RollsBackDependents(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.product(t, "Lamp", "1.00", 10)

	_, err := env.Ledger.PlaceOrder(ctx, user, ledger.PlaceRequest{ProductID: p.ID, Quantity: 1})
	require.NoError(t, err)
	require.NoError(t, env.Repo.AddToCart(ctx, &models.CartItem{UserID: 7, ProductID: p.ID, Quantity: 1}))
	failOn(t, env.DB, "delete", "products")

	_, err = env.Repo.DeleteProduct(ctx, p.ID)
	require.ErrorIs(t, err, domain.ErrInternal)
	assert.EqualValues(t, 1, env.count(t, &models.Order{}, "product_id = ?", p.ID))
	assert.EqualValues(t, 1, env.count(t, &models.CartItem{}, "product_id = ?", p.ID))
	assert.Equal(t, 9, env.stock(t, p.ID))
}

func TestDeleteProduct_NotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.Repo.DeleteProduct(context.Background(), 404)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSaveProduct_Versioned(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.product(t, "Lamp", "1.00", 10)

	stale := p
	p.Name = "Desk lamp"
	p.Price = decimal.RequireFromString("12.50")
	require.NoError(t, env.Repo.SaveProduct(ctx, &p))
	assert.Equal(t, 2, p.Version)

	got, err := env.Repo.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Desk lamp", got.Name)
	assert.True(t, decimal.RequireFromString("12.5").Equal(got.Price))

	stale.Name = "lost update"
	require.ErrorIs(t, env.Repo.SaveProduct(ctx, &stale), domain.ErrConflict)

	missing := models.Product{ID: 404, Version: 1, Name: "x"}
	require.ErrorIs(t, env.Repo.SaveProduct(ctx, &missing), domain.ErrNotFound)
}

func TestListProducts_Filter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cat := models.Category{Name: "Lighting"}
	require.NoError(t, env.Repo.CreateCategory(ctx, &cat))

	lamp := models.Product{Name: "Desk Lamp", Description: "warm light", Price: decimal.NewFromInt(5), Stock: 1, CategoryID: &cat.ID}
	require.NoError(t, env.Repo.CreateProduct(ctx, &lamp))
	env.product(t, "Chair", "20.00", 2)

	all, err := env.Repo.ListProducts(ctx, repo.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byName, err := env.Repo.ListProducts(ctx, repo.ProductFilter{Query: "LAMP"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, lamp.ID, byName[0].ID)

	byDesc, err := env.Repo.ListProducts(ctx, repo.ProductFilter{Query: "warm"})
	require.NoError(t, err)
	assert.Len(t, byDesc, 1)

	byCat, err := env.Repo.ListProducts(ctx, repo.ProductFilter{CategoryID: &cat.ID})
	require.NoError(t, err)
	require.Len(t, byCat, 1)
	assert.Equal(t, lamp.ID, byCat[0].ID)

	cats, err := env.Repo.CategoriesByIDs(ctx, []uint{cat.ID, 99})
	require.NoError(t, err)
	assert.Len(t, cats, 1)
}

func TestDeleteCategory_Restrict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	used := models.Category{Name: "Used"}
	free := models.Category{Name: "Free"}
	require.NoError(t, env.Repo.CreateCategory(ctx, &used))
	require.NoError(t, env.Repo.CreateCategory(ctx, &free))
	p := models.Product{Name: "Lamp", Price: decimal.NewFromInt(1), CategoryID: &used.ID}
	require.NoError(t, env.Repo.CreateProduct(ctx, &p))

	require.ErrorIs(t, env.Repo.DeleteCategory(ctx, used.ID), domain.ErrConflict)
	require.NoError(t, env.Repo.DeleteCategory(ctx, free.ID))
	require.ErrorIs(t, env.Repo.DeleteCategory(ctx, free.ID), domain.ErrNotFound)

	cats, err := env.Repo.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Used", cats[0].Name)
}

func TestListOrders_ProductNameFilter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	lamp := env.product(t, "Desk Lamp", "1.00", 5)
	chair := env.product(t, "Chair", "1.00", 5)

	for _, id := range []uint{lamp.ID, chair.ID, chair.ID} {
		_, err := env.Ledger.PlaceOrder(ctx, user, ledger.PlaceRequest{ProductID: id, Quantity: 1})
		require.NoError(t, err)
	}

	all, err := env.Repo.ListOrders(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	chairs, err := env.Repo.ListOrders(ctx, "chai")
	require.NoError(t, err)
	assert.Len(t, chairs, 2)

	none, err := env.Repo.ListOrders(ctx, "sofa")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCart_UpsertAndRemove(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.product(t, "Lamp", "1.00", 5)

	first := models.CartItem{UserID: 7, ProductID: p.ID, Quantity: 2}
	require.NoError(t, env.Repo.AddToCart(ctx, &first))
	second := models.CartItem{UserID: 7, ProductID: p.ID, Quantity: 3}
	require.NoError(t, env.Repo.AddToCart(ctx, &second))
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)

	require.ErrorIs(t, env.Repo.AddToCart(ctx, &models.CartItem{UserID: 7, ProductID: 404, Quantity: 1}), domain.ErrNotFound)

	items, err := env.Repo.GetCart(ctx, 7)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.ErrorIs(t, env.Repo.RemoveFromCart(ctx, 8, first.ID), domain.ErrNotFound)
	require.NoError(t, env.Repo.RemoveFromCart(ctx, 7, first.ID))
	items, err = env.Repo.GetCart(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u := models.User{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
	require.NoError(t, env.Repo.CreateUser(ctx, &u))

	users, err := env.Repo.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)

	byID, err := env.Repo.UsersByIDs(ctx, []uint{u.ID, 55})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", byID[u.ID].FullName())
}
