package cart

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/domain/pricing"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	mr      *miniredis.Miniredis
	service *Service
	shirt   product.Product
	mug     product.Product
	large   product.ProductVariant
}

func setup(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&product.Category{}, &product.Product{}, &product.ProductVariant{}, &CartItem{}))

	category := product.Category{Name: "Apparel", Slug: "apparel"}
	require.NoError(t, db.Create(&category).Error)

	f := &fixture{db: db}
	f.shirt = product.Product{SKU: "SHIRT", Name: "Shirt", Slug: "shirt", Price: 30000, CategoryID: category.ID, Image: "shirt.png"}
	f.mug = product.Product{SKU: "MUG", Name: "Mug", Slug: "mug", Price: 15000, CategoryID: category.ID}
	require.NoError(t, db.Create(&f.shirt).Error)
	require.NoError(t, db.Create(&f.mug).Error)

	f.large = product.ProductVariant{ProductID: f.shirt.ID, SKU: "SHIRT-L", Name: "Large", Price: 32000}
	require.NoError(t, db.Create(&f.large).Error)

	f.mr = miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: f.mr.Addr()})
	t.Cleanup(func() { client.Close() })

	f.service = NewService(
		NewGormRepository(db),
		NewRedisRepository(client, 24*time.Hour),
		product.NewService(db),
		pricing.DefaultRule(),
		logger.Discard(),
	)
	return f
}

func TestAddToCart_UserCartMergesLines(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := UserOwner(1)

	_, err := f.service.AddToCart(ctx, owner, &AddToCartRequest{ProductID: f.shirt.ID, Quantity: 1})
	require.NoError(t, err)
	cart, err := f.service.AddToCart(ctx, owner, &AddToCartRequest{ProductID: f.shirt.ID, Quantity: 2})
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.True(t, cart.Items[0].Available)
	assert.Equal(t, int64(90000), cart.Totals.SubTotal)
	assert.Equal(t, int64(0), cart.Totals.ShippingCost)
}

func TestAddToCart_VariantIsSeparateLine(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := UserOwner(1)

	_, err := f.service.AddToCart(ctx, owner, &AddToCartRequest{ProductID: f.shirt.ID, Quantity: 1})
	require.NoError(t, err)
	cart, err := f.service.AddToCart(ctx, owner, &AddToCartRequest{ProductID: f.shirt.ID, ProductVariantID: &f.large.ID, Quantity: 1})
	require.NoError(t, err)

	require.Len(t, cart.Items, 2)
	assert.Equal(t, int64(32000), cart.Items[1].Price)
}

func TestAddToCart_UnknownProduct(t *testing.T) {
	f := setup(t)

	_, err := f.service.AddToCart(context.Background(), UserOwner(1), &AddToCartRequest{ProductID: 999, Quantity: 1})
	assert.ErrorIs(t, err, product.ErrProductNotFound)

	other := uint(999)
	_, err = f.service.AddToCart(context.Background(), UserOwner(1), &AddToCartRequest{ProductID: f.shirt.ID, ProductVariantID: &other, Quantity: 1})
	assert.ErrorIs(t, err, product.ErrVariantNotFound)
}

func TestGuestCart_StoredInRedisWithTTL(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := GuestOwner("guest-1")

	cart, err := f.service.AddToCart(ctx, owner, &AddToCartRequest{ProductID: f.mug.ID, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, "guest-1", cart.SessionID)
	assert.Equal(t, int64(30000), cart.Totals.SubTotal)
	assert.Equal(t, int64(2500), cart.Totals.ShippingCost)
	assert.Equal(t, int64(20000), cart.Totals.AmountToFreeShipping)

	assert.True(t, f.mr.Exists("cart:session:guest-1"))
	assert.Equal(t, 24*time.Hour, f.mr.TTL("cart:session:guest-1"))
}

func TestGuestCart_RequiresSession(t *testing.T) {
	f := setup(t)

	_, err := f.service.GetCart(context.Background(), GuestOwner(""))
	assert.ErrorIs(t, err, ErrSessionRequired)
}

func TestUpdateCartItem(t *testing.T) {
	for name, owner := range map[string]Owner{"user": UserOwner(1), "guest": GuestOwner("guest-1")} {
		t.Run(name, func(t *testing.T) {
			f := setup(t)
			ctx := context.Background()

			_, err := f.service.AddToCart(ctx, owner, &AddToCartRequest{ProductID: f.mug.ID, Quantity: 1})
			require.NoError(t, err)

			cart, err := f.service.UpdateCartItem(ctx, owner, f.mug.ID, &UpdateCartItemRequest{Quantity: 4})
			require.NoError(t, err)
			require.Len(t, cart.Items, 1)
			assert.Equal(t, 4, cart.Items[0].Quantity)

			_, err = f.service.UpdateCartItem(ctx, owner, f.shirt.ID, &UpdateCartItemRequest{Quantity: 1})
			assert.ErrorIs(t, err, ErrItemNotFound)

			cart, err = f.service.RemoveFromCart(ctx, owner, f.mug.ID, nil)
			require.NoError(t, err)
			assert.Empty(t, cart.Items)
		})
	}
}

func TestLinesAndClear(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := UserOwner(7)

	_, err := f.service.AddToCart(ctx, owner, &AddToCartRequest{ProductID: f.shirt.ID, ProductVariantID: &f.large.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = f.service.AddToCart(ctx, owner, &AddToCartRequest{ProductID: f.mug.ID, Quantity: 2})
	require.NoError(t, err)

	lines, err := f.service.Lines(ctx, owner)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "Shirt", lines[0].Name)
	assert.Equal(t, "Large", lines[0].Variant)
	assert.Equal(t, "shirt.png", lines[0].Image)
	assert.Equal(t, int64(32000), lines[0].UnitPrice)

	count, err := f.service.GetCartItemCount(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.NoError(t, f.service.ClearCart(ctx, owner))
	count, err = f.service.GetCartItemCount(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestLines_SkipsDeletedProducts(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := UserOwner(1)

	_, err := f.service.AddToCart(ctx, owner, &AddToCartRequest{ProductID: f.shirt.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = f.service.AddToCart(ctx, owner, &AddToCartRequest{ProductID: f.mug.ID, Quantity: 1})
	require.NoError(t, err)
	require.NoError(t, f.db.Delete(&product.Product{}, f.mug.ID).Error)

	lines, err := f.service.Lines(ctx, owner)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, f.shirt.ID, lines[0].ProductID)

	contents, err := f.service.Contents(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, contents.Lines, 1)
	assert.Equal(t, 1, contents.Unavailable)

	cart, err := f.service.GetCart(ctx, owner)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.False(t, cart.Items[1].Available)
	assert.Equal(t, int64(30000), cart.Totals.SubTotal)
}

func TestTotals_UsesCurrentPrice(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := UserOwner(1)

	_, err := f.service.AddToCart(ctx, owner, &AddToCartRequest{ProductID: f.mug.ID, Quantity: 1})
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&product.Product{}).Where("id = ?", f.mug.ID).Update("price", 10000).Error)

	result, err := f.service.Totals(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, pricing.Result{Subtotal: 10000, Shipping: 2500, Total: 12500}, result)
}

func TestMergeGuestCartToUser(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.service.AddToCart(ctx, UserOwner(3), &AddToCartRequest{ProductID: f.mug.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = f.service.AddToCart(ctx, GuestOwner("guest-3"), &AddToCartRequest{ProductID: f.mug.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = f.service.AddToCart(ctx, GuestOwner("guest-3"), &AddToCartRequest{ProductID: f.shirt.ID, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, f.service.MergeGuestCartToUser(ctx, 3, "guest-3"))

	count, err := f.service.GetCartItemCount(ctx, UserOwner(3))
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.False(t, f.mr.Exists("cart:session:guest-3"))

	assert.NoError(t, f.service.MergeGuestCartToUser(ctx, 3, ""))
}

func TestGetCart_ConcurrentReads(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	owner := GuestOwner("busy")

	_, err := f.service.AddToCart(ctx, owner, &AddToCartRequest{ProductID: f.mug.ID, Quantity: 1})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := f.service.GetCartItemCount(ctx, owner)
			if err == nil && n != 1 {
				err = fmt.Errorf("unexpected count %d", n)
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}
