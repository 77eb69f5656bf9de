package service

import (
	"context"
	"sync"
	"testing"

	"github.com/freshveg/basket-agent/internal/app/model"
	"github.com/freshveg/basket-agent/internal/app/repository"
	"github.com/freshveg/basket-agent/internal/app/state"
	"github.com/freshveg/basket-agent/internal/storage"
	"github.com/freshveg/basket-agent/pkg/vegapi"
	"github.com/stretchr/testify/require"
)

// stubSession is a session oracle with a switchable flag.
type stubSession struct {
	mu         sync.Mutex
	authed     bool
	role       string
	generation uint64
}

func (s *stubSession) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authed
}

func (s *stubSession) Role() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.role
}

func (s *stubSession) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

func (s *stubSession) Invalidate() {
	s.mu.Lock()
	s.authed = false
	s.generation++
	s.mu.Unlock()
}

func (s *stubSession) setAuthed(authed bool, role string) {
	s.mu.Lock()
	s.authed = authed
	s.role = role
	s.mu.Unlock()
}

// fakeRemote scripts the grocery API and counts calls.
type fakeRemote struct {
	mu sync.Mutex

	addCartCalls     int
	updateCalls      int
	deleteCalls      int
	toggleCalls      int
	addWishlistCalls int
	fetchCartCalls   int

	addCartErr     error
	updateErr      error
	deleteErr      error
	toggleErr      error
	addWishlistErr error
	fetchCartErr   error

	addCartResp  *vegapi.CartItemPayload
	cartPayload  vegapi.CartPayload
	wishPayload  vegapi.WishlistPayload
	lastAddedIDs []uint
}

func (f *fakeRemote) FetchCart(ctx context.Context) (*vegapi.CartPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCartCalls++
	if f.fetchCartErr != nil {
		return nil, f.fetchCartErr
	}
	cart := f.cartPayload
	return &cart, nil
}

func (f *fakeRemote) AddCartItem(ctx context.Context, req vegapi.AddCartItemRequest) (*vegapi.CartItemPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addCartCalls++
	if f.addCartErr != nil {
		return nil, f.addCartErr
	}
	f.lastAddedIDs = append(f.lastAddedIDs, req.VegetableID)
	if f.addCartResp != nil {
		return f.addCartResp, nil
	}
	return &vegapi.CartItemPayload{VegetableID: req.VegetableID, Quantity: req.Quantity}, nil
}

func (f *fakeRemote) UpdateCartItem(ctx context.Context, vegetableID uint, quantity int) (*vegapi.CartItemPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &vegapi.CartItemPayload{VegetableID: vegetableID, Quantity: quantity}, nil
}

func (f *fakeRemote) DeleteCartItem(ctx context.Context, vegetableID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	return f.deleteErr
}

func (f *fakeRemote) FetchWishlist(ctx context.Context) (*vegapi.WishlistPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wishlist := f.wishPayload
	return &wishlist, nil
}

func (f *fakeRemote) ToggleWishlist(ctx context.Context, vegetableID uint) (*vegapi.TogglePayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toggleCalls++
	if f.toggleErr != nil {
		return nil, f.toggleErr
	}
	return &vegapi.TogglePayload{VegetableID: vegetableID, Wishlisted: true}, nil
}

func (f *fakeRemote) AddWishlistItem(ctx context.Context, req vegapi.AddWishlistItemRequest) (*vegapi.WishlistItemPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addWishlistCalls++
	if f.addWishlistErr != nil {
		return nil, f.addWishlistErr
	}
	return &vegapi.WishlistItemPayload{VegetableID: req.VegetableID}, nil
}

func (f *fakeRemote) counts() (addCart, update, del, toggle, addWish int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addCartCalls, f.updateCalls, f.deleteCalls, f.toggleCalls, f.addWishlistCalls
}

func unauthorizedErr() error {
	return &vegapi.APIError{Kind: vegapi.ErrUnauthorized, StatusCode: 401, Code: "SESSION_UNAUTHENTICATED", Message: "session expired"}
}

func validationErr(message string) error {
	return &vegapi.APIError{Kind: vegapi.ErrValidation, StatusCode: 422, Code: "VALIDATION_REJECTED", Message: message}
}

func newTestGuestStore(t *testing.T) repository.GuestStore {
	t.Helper()

	kv, err := storage.NewSQLiteKV(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		kv.Close()
	})
	return repository.NewGuestStore(kv)
}

type testEngine struct {
	session    *stubSession
	remote     *fakeRemote
	guestStore repository.GuestStore
	cartState  *state.CartState
	wishState  *state.WishlistState
	cart       CartService
	wishlist   WishlistService
}

func setupEngineTest(t *testing.T) *testEngine {
	t.Helper()

	sess := &stubSession{}
	remote := &fakeRemote{}
	guestStore := newTestGuestStore(t)
	cartState := state.NewCartState()
	wishState := state.NewWishlistState()
	badges := NewBadgePublisher(cartState, wishState, nil)

	cart := NewCartService(cartState, guestStore, remote, sess, badges)
	t.Cleanup(cart.Close)
	wishlist := NewWishlistService(wishState, guestStore, remote, sess, badges)
	t.Cleanup(wishlist.Close)

	return &testEngine{
		session:    sess,
		remote:     remote,
		guestStore: guestStore,
		cartState:  cartState,
		wishState:  wishState,
		cart:       cart,
		wishlist:   wishlist,
	}
}

func testVeg(id uint, name string, price float64) model.Vegetable {
	return model.Vegetable{ID: id, Name: name, Price: price}
}
