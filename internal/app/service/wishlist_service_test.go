package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWishlistService_GuestTogglePersistsSnapshot(t *testing.T) {
	e := setupEngineTest(t)

	added, err := e.wishlist.Toggle(testVeg(3, "Tomato", 15))
	require.NoError(t, err)
	assert.True(t, added)
	e.wishlist.Flush()

	_, _, _, toggle, _ := e.remote.counts()
	assert.Equal(t, 0, toggle)

	saved, err := e.guestStore.LoadWishlist(context.Background())
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, uint(3), saved[0].VegetableID)
}

func TestWishlistService_ToggleTwiceRemovesFromSnapshot(t *testing.T) {
	e := setupEngineTest(t)
	veg := testVeg(3, "Tomato", 15)

	added, err := e.wishlist.Toggle(veg)
	require.NoError(t, err)
	assert.True(t, added)

	removed, err := e.wishlist.Toggle(veg)
	require.NoError(t, err)
	assert.False(t, removed)
	e.wishlist.Flush()

	assert.False(t, e.wishlist.IsWishlisted(veg.ID))
	saved, err := e.guestStore.LoadWishlist(context.Background())
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestWishlistService_ToggleRejectsZeroID(t *testing.T) {
	e := setupEngineTest(t)

	_, err := e.wishlist.Toggle(testVeg(0, "Ghost", 0))
	assert.ErrorIs(t, err, ErrInvalidVegetable)
	assert.Zero(t, e.wishlist.Count())
}

func TestWishlistService_AuthenticatedToggleCallsRemote(t *testing.T) {
	e := setupEngineTest(t)
	e.session.setAuthed(true, "customer")

	added, err := e.wishlist.Toggle(testVeg(3, "Tomato", 15))
	require.NoError(t, err)
	assert.True(t, added)
	e.wishlist.Flush()

	_, _, _, toggle, _ := e.remote.counts()
	assert.Equal(t, 1, toggle)
	assert.True(t, e.wishlist.IsWishlisted(3))
}

func TestWishlistService_UnauthorizedDegradesToGuest(t *testing.T) {
	e := setupEngineTest(t)
	e.session.setAuthed(true, "customer")
	e.remote.toggleErr = unauthorizedErr()

	added, err := e.wishlist.Toggle(testVeg(3, "Tomato", 15))
	require.NoError(t, err)
	assert.True(t, added)
	e.wishlist.Flush()

	// Membership survives the rejection and lands in the guest store.
	assert.True(t, e.wishlist.IsWishlisted(3))
	assert.False(t, e.session.IsAuthenticated())
	saved, err := e.guestStore.LoadWishlist(context.Background())
	require.NoError(t, err)
	assert.Len(t, saved, 1)
}

func TestWishlistService_ValidationErrorFillsSlot(t *testing.T) {
	e := setupEngineTest(t)
	e.session.setAuthed(true, "customer")
	e.remote.toggleErr = validationErr("vegetable discontinued")

	_, err := e.wishlist.Toggle(testVeg(3, "Tomato", 15))
	require.NoError(t, err)
	e.wishlist.Flush()

	assert.True(t, e.wishlist.IsWishlisted(3))
	dispatchErr := e.wishlist.ConsumeDispatchError()
	require.NotNil(t, dispatchErr)
	assert.Equal(t, "vegetable discontinued", dispatchErr.Message)
	assert.Nil(t, e.wishlist.ConsumeDispatchError())
}

func TestWishlistService_RefreshFromGuestStore(t *testing.T) {
	e := setupEngineTest(t)
	_, err := e.wishlist.Toggle(testVeg(3, "Tomato", 15))
	require.NoError(t, err)
	e.wishlist.Flush()
	e.wishlist.Clear()
	require.Zero(t, e.wishlist.Count())

	require.NoError(t, e.wishlist.Refresh(context.Background()))

	assert.True(t, e.wishlist.IsWishlisted(3))
	assert.Equal(t, 1, e.wishlist.Count())
}
