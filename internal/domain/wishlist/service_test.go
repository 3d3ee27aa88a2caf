package wishlist

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

type MockCart struct {
	added []cart.AddToCartRequest
	err   error
}

func (m *MockCart) AddToCart(_ context.Context, owner cart.Owner, req *cart.AddToCartRequest) (*cart.CartResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.added = append(m.added, *req)
	return &cart.CartResponse{UserID: owner.UserID}, nil
}

func setup(t *testing.T) (*Service, *MockCart, product.Product) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&product.Category{}, &product.Product{}, &product.ProductVariant{}, &WishlistItem{}))

	category := product.Category{Name: "Home", Slug: "home"}
	require.NoError(t, db.Create(&category).Error)
	lamp := product.Product{SKU: "LAMP", Name: "Lamp", Slug: "lamp", Price: 4500, CategoryID: category.ID}
	require.NoError(t, db.Create(&lamp).Error)

	carts := &MockCart{}
	return NewService(db, product.NewService(db), carts, logger.Discard()), carts, lamp
}

func TestAddAndGetWishlist(t *testing.T) {
	svc, _, lamp := setup(t)
	ctx := context.Background()

	item, err := svc.AddToWishlist(ctx, 1, &AddRequest{ProductID: lamp.ID})
	require.NoError(t, err)
	assert.Equal(t, "Lamp", item.Product.Name)

	_, err = svc.AddToWishlist(ctx, 1, &AddRequest{ProductID: lamp.ID})
	assert.ErrorIs(t, err, ErrItemExists)

	_, err = svc.AddToWishlist(ctx, 1, &AddRequest{ProductID: 404})
	assert.ErrorIs(t, err, product.ErrProductNotFound)

	list, err := svc.GetWishlist(ctx, 1, 1, 20)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.True(t, list.Items[0].Available)
	assert.Equal(t, int64(1), list.Pagination.Total)

	count, err := svc.GetWishlistCount(ctx, 2)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRemoveFromWishlist(t *testing.T) {
	svc, _, lamp := setup(t)
	ctx := context.Background()

	_, err := svc.AddToWishlist(ctx, 1, &AddRequest{ProductID: lamp.ID})
	require.NoError(t, err)

	require.NoError(t, svc.RemoveFromWishlist(ctx, 1, lamp.ID, nil))
	assert.ErrorIs(t, svc.RemoveFromWishlist(ctx, 1, lamp.ID, nil), ErrItemNotFound)
}

func TestMoveToCart(t *testing.T) {
	svc, carts, lamp := setup(t)
	ctx := context.Background()

	_, err := svc.MoveToCart(ctx, 1, lamp.ID, &MoveToCartRequest{})
	assert.ErrorIs(t, err, ErrItemNotFound)

	_, err = svc.AddToWishlist(ctx, 1, &AddRequest{ProductID: lamp.ID})
	require.NoError(t, err)

	carts.err = errors.New("cart unavailable")
	_, err = svc.MoveToCart(ctx, 1, lamp.ID, &MoveToCartRequest{Quantity: 2})
	assert.Error(t, err)
	count, _ := svc.GetWishlistCount(ctx, 1)
	assert.Equal(t, int64(1), count)

	carts.err = nil
	_, err = svc.MoveToCart(ctx, 1, lamp.ID, &MoveToCartRequest{Quantity: 2})
	require.NoError(t, err)
	require.Len(t, carts.added, 1)
	assert.Equal(t, 2, carts.added[0].Quantity)

	count, _ = svc.GetWishlistCount(ctx, 1)
	assert.Zero(t, count)
}
