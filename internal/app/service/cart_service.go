package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/freshveg/basket-agent/internal/app/model"
	"github.com/freshveg/basket-agent/internal/app/repository"
	"github.com/freshveg/basket-agent/internal/app/state"
	apperrors "github.com/freshveg/basket-agent/internal/errors"
	"github.com/freshveg/basket-agent/pkg/logger"
	"github.com/freshveg/basket-agent/pkg/vegapi"
)

var (
	ErrInvalidQuantity  = errors.New("quantity must be between 1 and 99")
	ErrInvalidVegetable = errors.New("vegetable id is required")
	ErrCartItemNotFound = errors.New("cart item not found")
)

// CartService is the optimistic mutation engine for the cart. Every
// mutation applies to in-memory state synchronously and confirms in the
// background against whichever backend the session oracle says owns
// writes at dispatch time.
type CartService interface {
	Items() []model.CartItem
	TotalAmount() float64
	ItemCount() int
	Addresses() []model.Address
	PaymentMethods() []model.PaymentMethod
	Add(veg model.Vegetable, quantity int) error
	Remove(vegetableID uint)
	SetQuantity(vegetableID uint, quantity int) error
	Refresh(ctx context.Context) error
	Clear()
	ConsumeDispatchError() *DispatchError
	Flush()
	Close()
}

type cartService struct {
	state      *state.CartState
	guestStore repository.GuestStore
	remote     RemoteClient
	session    SessionOracle
	badges     *BadgePublisher
	dispatcher *dispatcher

	errMu   sync.Mutex
	lastErr *DispatchError
}

func NewCartService(
	cartState *state.CartState,
	guestStore repository.GuestStore,
	remote RemoteClient,
	session SessionOracle,
	badges *BadgePublisher,
) CartService {
	return &cartService{
		state:      cartState,
		guestStore: guestStore,
		remote:     remote,
		session:    session,
		badges:     badges,
		dispatcher: newDispatcher("cart", 64, 15*time.Second),
	}
}

func (s *cartService) Items() []model.CartItem    { return s.state.Items() }
func (s *cartService) TotalAmount() float64       { return s.state.TotalAmount() }
func (s *cartService) ItemCount() int             { return s.state.ItemCount() }
func (s *cartService) Addresses() []model.Address { return s.state.Addresses() }
func (s *cartService) PaymentMethods() []model.PaymentMethod {
	return s.state.PaymentMethods()
}

// Add merges the vegetable into the cart and confirms in the background.
// Apply never fails once the input is validated.
func (s *cartService) Add(veg model.Vegetable, quantity int) error {
	if veg.ID == 0 {
		return ErrInvalidVegetable
	}
	if quantity < model.MinQuantity || quantity > model.MaxQuantity {
		logger.Warn("Rejecting add with invalid quantity", map[string]interface{}{
			"vegetable_id": veg.ID,
			"quantity":     quantity,
		})
		return ErrInvalidQuantity
	}

	item := s.state.Add(veg, quantity)
	s.badges.Publish()

	logger.Info("Cart item applied", map[string]interface{}{
		"vegetable_id": veg.ID,
		"quantity":     item.Quantity,
		"subtotal":     item.Subtotal,
	})

	snapshot, version := s.state.Snapshot()
	s.dispatcher.Enqueue(func(ctx context.Context) {
		s.dispatch(ctx, snapshot, version, veg.ID, func(ctx context.Context) (*vegapi.CartItemPayload, error) {
			return s.remote.AddCartItem(ctx, vegapi.AddCartItemRequest{
				VegetableID: veg.ID,
				Quantity:    quantity,
			})
		})
	})
	return nil
}

// Remove drops the row. Removing an absent vegetable is a no-op.
func (s *cartService) Remove(vegetableID uint) {
	if !s.state.Remove(vegetableID) {
		logger.Debug("Remove of absent cart item ignored", map[string]interface{}{
			"vegetable_id": vegetableID,
		})
		return
	}
	s.badges.Publish()

	logger.Info("Cart item removed", map[string]interface{}{
		"vegetable_id": vegetableID,
	})

	snapshot, version := s.state.Snapshot()
	s.dispatcher.Enqueue(func(ctx context.Context) {
		s.dispatch(ctx, snapshot, version, vegetableID, func(ctx context.Context) (*vegapi.CartItemPayload, error) {
			return nil, s.remote.DeleteCartItem(ctx, vegetableID)
		})
	})
}

// SetQuantity replaces the row's quantity. Invalid quantities are
// rejected before the in-memory state is touched.
func (s *cartService) SetQuantity(vegetableID uint, quantity int) error {
	if quantity < model.MinQuantity || quantity > model.MaxQuantity {
		logger.Warn("Rejecting quantity update out of range", map[string]interface{}{
			"vegetable_id": vegetableID,
			"quantity":     quantity,
		})
		return ErrInvalidQuantity
	}
	if !s.state.SetQuantity(vegetableID, quantity) {
		return ErrCartItemNotFound
	}
	s.badges.Publish()

	logger.Info("Cart quantity applied", map[string]interface{}{
		"vegetable_id": vegetableID,
		"quantity":     quantity,
	})

	snapshot, version := s.state.Snapshot()
	s.dispatcher.Enqueue(func(ctx context.Context) {
		s.dispatch(ctx, snapshot, version, vegetableID, func(ctx context.Context) (*vegapi.CartItemPayload, error) {
			return s.remote.UpdateCartItem(ctx, vegetableID, quantity)
		})
	})
	return nil
}

// dispatch is the background confirmation step shared by all cart
// mutations. The session oracle is read here, not at apply time: a
// mutation that raced a logout confirms against the guest store.
func (s *cartService) dispatch(
	ctx context.Context,
	snapshot []model.CartItem,
	version uint64,
	vegetableID uint,
	remoteCall func(context.Context) (*vegapi.CartItemPayload, error),
) {
	if !s.session.IsAuthenticated() {
		s.persistGuest(ctx, snapshot)
		return
	}

	payload, err := remoteCall(ctx)
	if err != nil {
		s.handleDispatchFailure(ctx, err, snapshot, vegetableID)
		return
	}

	// Merge server-authoritative fields, but only while still relevant:
	// the session must still be active and no newer mutation applied.
	if payload != nil && s.session.IsAuthenticated() {
		if s.state.MergeAuthoritative(payload.VegetableID, payload.ID, payload.UnitPrice, version) {
			s.badges.Publish()
		} else {
			logger.Debug("Discarding stale cart confirmation", map[string]interface{}{
				"vegetable_id": payload.VegetableID,
				"version":      version,
			})
		}
	}
}

func (s *cartService) handleDispatchFailure(ctx context.Context, err error, snapshot []model.CartItem, vegetableID uint) {
	switch {
	case errors.Is(err, vegapi.ErrUnauthorized):
		// Session expired mid-flight. The optimistic change stands; the
		// mutation is re-targeted at the guest store and the user never
		// sees a failure.
		s.session.Invalidate()
		s.persistGuest(ctx, snapshot)
		logger.Info("Cart dispatch re-targeted to guest store", map[string]interface{}{
			"vegetable_id": vegetableID,
		})

	case errors.Is(err, vegapi.ErrValidation):
		dispatchErr := &DispatchError{
			Code:        apperrors.ValidationRejected,
			Message:     "Something went wrong. Please try again",
			VegetableID: vegetableID,
		}
		var apiErr *vegapi.APIError
		if errors.As(err, &apiErr) {
			dispatchErr.Code = apiErr.Code
			dispatchErr.Message = apiErr.Message
		}
		s.setDispatchError(dispatchErr)
		s.badges.PublishError(dispatchErr)
		logger.Warn("Cart dispatch rejected by server", map[string]interface{}{
			"vegetable_id": vegetableID,
			"code":         dispatchErr.Code,
			"message":      dispatchErr.Message,
		})

	default:
		// Network or server failure: keep the optimistic state, best
		// effort only.
		logger.Warn("Cart dispatch failed, keeping optimistic state", map[string]interface{}{
			"vegetable_id": vegetableID,
			"error":        err.Error(),
		})
	}
}

func (s *cartService) persistGuest(ctx context.Context, snapshot []model.CartItem) {
	if err := s.guestStore.SaveCart(ctx, snapshot); err != nil {
		logger.Error("Failed to persist guest cart", err, map[string]interface{}{
			"count": len(snapshot),
		})
	}
}

// Refresh loads the canonical collection from whichever backend owns it.
func (s *cartService) Refresh(ctx context.Context) error {
	if s.session.IsAuthenticated() {
		cart, err := s.remote.FetchCart(ctx)
		if err == nil {
			s.state.Replace(cartItemsFromPayload(cart.Items))
			s.state.SetCheckoutDetails(addressesFromPayload(cart.Addresses), paymentMethodsFromPayload(cart.PaymentMethods))
			s.badges.Publish()
			logger.Info("Cart loaded from server", map[string]interface{}{
				"count": len(cart.Items),
			})
			return nil
		}
		if !errors.Is(err, vegapi.ErrUnauthorized) {
			logger.Error("Failed to load cart from server", err, nil)
			return err
		}
		s.session.Invalidate()
	}

	items, err := s.guestStore.LoadCart(ctx)
	if err != nil {
		// Storage failures are best effort, never blocking.
		logger.Error("Failed to load guest cart, keeping current state", err, nil)
		return nil
	}
	s.state.Replace(items)
	s.badges.Publish()
	logger.Info("Cart loaded from guest store", map[string]interface{}{
		"count": len(items),
	})
	return nil
}

// Clear empties the in-memory cart on logout. The guest store is
// deliberately left alone: it is cleared only after a confirmed
// post-login merge.
func (s *cartService) Clear() {
	s.state.Clear()
	s.badges.Publish()
}

// ConsumeDispatchError returns and clears the validation error slot.
func (s *cartService) ConsumeDispatchError() *DispatchError {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	err := s.lastErr
	s.lastErr = nil
	return err
}

func (s *cartService) setDispatchError(err *DispatchError) {
	s.errMu.Lock()
	s.lastErr = err
	s.errMu.Unlock()
}

// Flush blocks until all pending dispatches complete. Used by tests and
// shutdown.
func (s *cartService) Flush() {
	s.dispatcher.Flush()
}

func (s *cartService) Close() {
	s.dispatcher.Close()
}

func cartItemsFromPayload(payload []vegapi.CartItemPayload) []model.CartItem {
	items := make([]model.CartItem, 0, len(payload))
	for _, p := range payload {
		items = append(items, model.CartItem{
			ID:          p.ID,
			VegetableID: p.VegetableID,
			Name:        p.Name,
			ImageURL:    p.ImageURL,
			Unit:        p.Unit,
			UnitPrice:   p.UnitPrice,
			Quantity:    p.Quantity,
			Subtotal:    p.Subtotal,
		})
	}
	return items
}

func addressesFromPayload(payload []vegapi.AddressPayload) []model.Address {
	addresses := make([]model.Address, 0, len(payload))
	for _, p := range payload {
		addresses = append(addresses, model.Address{
			ID:        p.ID,
			Label:     p.Label,
			Line1:     p.Line1,
			Line2:     p.Line2,
			City:      p.City,
			Pincode:   p.Pincode,
			IsDefault: p.IsDefault,
		})
	}
	return addresses
}

func paymentMethodsFromPayload(payload []vegapi.PaymentMethodPayload) []model.PaymentMethod {
	methods := make([]model.PaymentMethod, 0, len(payload))
	for _, p := range payload {
		methods = append(methods, model.PaymentMethod{
			ID:        p.ID,
			Kind:      p.Kind,
			Label:     p.Label,
			IsDefault: p.IsDefault,
		})
	}
	return methods
}
