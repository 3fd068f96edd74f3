package services_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/policy"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/app/services"
)

func newCartService(t *testing.T, f *fixture) *services.CartService {
	t.Helper()
	return services.NewCartService(
		repositories.NewCartRepository(f.db),
		repositories.NewProductRepository(f.db),
		f.orders,
	)
}

func TestCartAdd(t *testing.T) {
	f := newFixture(t)
	cart := newCartService(t, f)

	item, err := cart.Add(f.customerActor(), f.product.ID, 2)
	require.NoError(t, err)
	require.Equal(t, 2, item.Quantity)

	item, err = cart.Add(f.customerActor(), f.product.ID, 1)
	require.NoError(t, err)
	require.Equal(t, 3, item.Quantity)
}

func TestCartAdd_UnknownProduct(t *testing.T) {
	f := newFixture(t)
	cart := newCartService(t, f)

	_, err := cart.Add(f.customerActor(), 9999, 1)
	require.ErrorIs(t, err, services.ErrNotFound)
}

func TestCartAdd_SellersForbidden(t *testing.T) {
	f := newFixture(t)
	cart := newCartService(t, f)

	_, err := cart.Add(f.sellerActor(), f.product.ID, 1)
	require.ErrorIs(t, err, policy.ErrForbidden)
}

func TestCheckout_PlacesOrdersAndEmptiesCart(t *testing.T) {
	f := newFixture(t)
	cart := newCartService(t, f)

	second := models.Product{Name: "Phone", Price: 50, Stock: 10, SellerID: f.seller.ID}
	require.NoError(t, f.db.Create(&second).Error)

	_, err := cart.Add(f.customerActor(), f.product.ID, 2)
	require.NoError(t, err)
	_, err = cart.Add(f.customerActor(), second.ID, 1)
	require.NoError(t, err)

	placed, failed := cart.Checkout(f.customerActor())
	require.Nil(t, failed)
	require.Len(t, placed, 2)

	items, err := cart.List(f.customer.ID)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestCheckout_SoldOutLineStaysInCart(t *testing.T) {
	f := newFixture(t)
	cart := newCartService(t, f)

	_, err := cart.Add(f.customerActor(), f.product.ID, 99)
	require.NoError(t, err)

	placed, failed := cart.Checkout(f.customerActor())
	require.Empty(t, placed)
	require.ErrorIs(t, failed[f.product.ID], services.ErrInsufficientStock)

	items, err := cart.List(f.customer.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
}
