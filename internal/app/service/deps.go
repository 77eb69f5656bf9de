package service

import (
	"context"

	"github.com/freshveg/basket-agent/internal/app/model"
	"github.com/freshveg/basket-agent/internal/app/state"
	"github.com/freshveg/basket-agent/pkg/vegapi"
)

// RemoteClient is the slice of the grocery API the engine depends on.
// Implemented by vegapi.Client and by the fakes in the tests.
type RemoteClient interface {
	FetchCart(ctx context.Context) (*vegapi.CartPayload, error)
	AddCartItem(ctx context.Context, req vegapi.AddCartItemRequest) (*vegapi.CartItemPayload, error)
	UpdateCartItem(ctx context.Context, vegetableID uint, quantity int) (*vegapi.CartItemPayload, error)
	DeleteCartItem(ctx context.Context, vegetableID uint) error
	FetchWishlist(ctx context.Context) (*vegapi.WishlistPayload, error)
	ToggleWishlist(ctx context.Context, vegetableID uint) (*vegapi.TogglePayload, error)
	AddWishlistItem(ctx context.Context, req vegapi.AddWishlistItemRequest) (*vegapi.WishlistItemPayload, error)
}

// SessionOracle answers "is an authenticated session active" at the
// moment a dispatch executes, and degrades the session when the server
// rejects it. Generation advances on every drop back to guest mode, by
// logout or by server rejection. Implemented by session.Session.
type SessionOracle interface {
	IsAuthenticated() bool
	Role() string
	Generation() uint64
	Invalidate()
}

// Notifier pushes engine events to the UI layer. Implemented by the
// WebSocket hub; nil-safe through BadgePublisher.
type Notifier interface {
	BroadcastBadge(update model.BadgeUpdate)
	BroadcastError(code, message string, vegetableID uint)
}

// DispatchError is the side-channel error slot for validation failures
// surfaced asynchronously. The optimistic state is never rolled back;
// the UI reads this to show a retry affordance.
type DispatchError struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	VegetableID uint   `json:"vegetable_id"`
}

// BadgePublisher recomputes the aggregate badge view from both state
// containers and pushes it to the notifier.
type BadgePublisher struct {
	cart     *state.CartState
	wishlist *state.WishlistState
	notifier Notifier
}

func NewBadgePublisher(cart *state.CartState, wishlist *state.WishlistState, notifier Notifier) *BadgePublisher {
	return &BadgePublisher{cart: cart, wishlist: wishlist, notifier: notifier}
}

// Snapshot builds the current badge view.
func (b *BadgePublisher) Snapshot() model.BadgeUpdate {
	return model.BadgeUpdate{
		CartCount:     b.cart.ItemCount(),
		CartTotal:     b.cart.TotalAmount(),
		WishlistCount: b.wishlist.Count(),
	}
}

// Publish pushes the current badge view to connected UI clients.
func (b *BadgePublisher) Publish() {
	if b == nil || b.notifier == nil {
		return
	}
	b.notifier.BroadcastBadge(b.Snapshot())
}

// PublishError pushes a validation failure to connected UI clients.
func (b *BadgePublisher) PublishError(dispatchErr *DispatchError) {
	if b == nil || b.notifier == nil || dispatchErr == nil {
		return
	}
	b.notifier.BroadcastError(dispatchErr.Code, dispatchErr.Message, dispatchErr.VegetableID)
}
