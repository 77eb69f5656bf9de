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

// WishlistService is the optimistic mutation engine for the wishlist.
// Membership has a single entry point: Toggle.
type WishlistService interface {
	Items() []model.WishlistItem
	Count() int
	IsWishlisted(vegetableID uint) bool
	Toggle(veg model.Vegetable) (bool, error)
	Refresh(ctx context.Context) error
	Clear()
	ConsumeDispatchError() *DispatchError
	Flush()
	Close()
}

type wishlistService struct {
	state      *state.WishlistState
	guestStore repository.GuestStore
	remote     RemoteClient
	session    SessionOracle
	badges     *BadgePublisher
	dispatcher *dispatcher

	errMu   sync.Mutex
	lastErr *DispatchError
}

func NewWishlistService(
	wishlistState *state.WishlistState,
	guestStore repository.GuestStore,
	remote RemoteClient,
	session SessionOracle,
	badges *BadgePublisher,
) WishlistService {
	return &wishlistService{
		state:      wishlistState,
		guestStore: guestStore,
		remote:     remote,
		session:    session,
		badges:     badges,
		dispatcher: newDispatcher("wishlist", 64, 15*time.Second),
	}
}

func (s *wishlistService) Items() []model.WishlistItem { return s.state.Items() }
func (s *wishlistService) Count() int                  { return s.state.Count() }

func (s *wishlistService) IsWishlisted(vegetableID uint) bool {
	return s.state.Contains(vegetableID)
}

// Toggle flips membership and confirms in the background. Reports the
// optimistic membership state after the call.
func (s *wishlistService) Toggle(veg model.Vegetable) (bool, error) {
	if veg.ID == 0 {
		return false, ErrInvalidVegetable
	}

	added := s.state.Toggle(veg)
	s.badges.Publish()

	logger.Info("Wishlist toggle applied", map[string]interface{}{
		"vegetable_id": veg.ID,
		"wishlisted":   added,
	})

	snapshot, _ := s.state.Snapshot()
	s.dispatcher.Enqueue(func(ctx context.Context) {
		s.dispatchToggle(ctx, snapshot, veg.ID, added)
	})
	return added, nil
}

func (s *wishlistService) dispatchToggle(ctx context.Context, snapshot []model.WishlistItem, vegetableID uint, added bool) {
	if !s.session.IsAuthenticated() {
		s.persistGuest(ctx, snapshot)
		return
	}

	payload, err := s.remote.ToggleWishlist(ctx, vegetableID)
	if err != nil {
		s.handleDispatchFailure(ctx, err, snapshot, vegetableID)
		return
	}

	if payload != nil && payload.Wishlisted != added {
		// The server resolved the toggle differently, meaning local and
		// remote membership had already drifted. The background refresh
		// straightens this out; do not yank the row from under the user.
		logger.Debug("Wishlist toggle drifted from server", map[string]interface{}{
			"vegetable_id": vegetableID,
			"local":        added,
			"server":       payload.Wishlisted,
		})
	}
}

func (s *wishlistService) handleDispatchFailure(ctx context.Context, err error, snapshot []model.WishlistItem, vegetableID uint) {
	switch {
	case errors.Is(err, vegapi.ErrUnauthorized):
		s.session.Invalidate()
		s.persistGuest(ctx, snapshot)
		logger.Info("Wishlist dispatch re-targeted to guest store", map[string]interface{}{
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
		logger.Warn("Wishlist dispatch rejected by server", map[string]interface{}{
			"vegetable_id": vegetableID,
			"code":         dispatchErr.Code,
		})

	default:
		logger.Warn("Wishlist dispatch failed, keeping optimistic state", map[string]interface{}{
			"vegetable_id": vegetableID,
			"error":        err.Error(),
		})
	}
}

func (s *wishlistService) persistGuest(ctx context.Context, snapshot []model.WishlistItem) {
	if err := s.guestStore.SaveWishlist(ctx, snapshot); err != nil {
		logger.Error("Failed to persist guest wishlist", err, map[string]interface{}{
			"count": len(snapshot),
		})
	}
}

// Refresh loads the canonical collection from whichever backend owns it.
func (s *wishlistService) Refresh(ctx context.Context) error {
	if s.session.IsAuthenticated() {
		wishlist, err := s.remote.FetchWishlist(ctx)
		if err == nil {
			s.state.Replace(wishlistItemsFromPayload(wishlist.Items))
			s.badges.Publish()
			logger.Info("Wishlist loaded from server", map[string]interface{}{
				"count": len(wishlist.Items),
			})
			return nil
		}
		if !errors.Is(err, vegapi.ErrUnauthorized) {
			logger.Error("Failed to load wishlist from server", err, nil)
			return err
		}
		s.session.Invalidate()
	}

	items, err := s.guestStore.LoadWishlist(ctx)
	if err != nil {
		logger.Error("Failed to load guest wishlist, keeping current state", err, nil)
		return nil
	}
	s.state.Replace(items)
	s.badges.Publish()
	logger.Info("Wishlist loaded from guest store", map[string]interface{}{
		"count": len(items),
	})
	return nil
}

// Clear empties the in-memory wishlist on logout. The guest store is
// left alone.
func (s *wishlistService) Clear() {
	s.state.Clear()
	s.badges.Publish()
}

// ConsumeDispatchError returns and clears the validation error slot.
func (s *wishlistService) ConsumeDispatchError() *DispatchError {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	err := s.lastErr
	s.lastErr = nil
	return err
}

func (s *wishlistService) setDispatchError(err *DispatchError) {
	s.errMu.Lock()
	s.lastErr = err
	s.errMu.Unlock()
}

// Flush blocks until all pending dispatches complete.
func (s *wishlistService) Flush() {
	s.dispatcher.Flush()
}

func (s *wishlistService) Close() {
	s.dispatcher.Close()
}

func wishlistItemsFromPayload(payload []vegapi.WishlistItemPayload) []model.WishlistItem {
	items := make([]model.WishlistItem, 0, len(payload))
	for _, p := range payload {
		items = append(items, model.WishlistItem{
			ID:          p.ID,
			VegetableID: p.VegetableID,
			Name:        p.Name,
			ImageURL:    p.ImageURL,
			Unit:        p.Unit,
			UnitPrice:   p.UnitPrice,
		})
	}
	return items
}
