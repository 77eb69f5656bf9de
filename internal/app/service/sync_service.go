package service

import (
	"context"
	"sync"

	"github.com/freshveg/basket-agent/internal/app/repository"
	apperrors "github.com/freshveg/basket-agent/internal/errors"
	"github.com/freshveg/basket-agent/internal/session"
	"github.com/freshveg/basket-agent/pkg/logger"
	"github.com/freshveg/basket-agent/pkg/vegapi"
)

// SyncReport summarizes a login-time reconciliation run.
type SyncReport struct {
	Skipped        string `json:"skipped,omitempty"` // reason code when nothing was merged
	CartMerged     int    `json:"cart_merged"`
	CartFailed     int    `json:"cart_failed"`
	WishlistMerged int    `json:"wishlist_merged"`
	WishlistFailed int    `json:"wishlist_failed"`
}

type refresher interface {
	Refresh(ctx context.Context) error
}

// SyncService merges the guest snapshot into the server-owned
// collections exactly once per guest-to-authenticated transition.
type SyncService interface {
	OnLogin(ctx context.Context) (*SyncReport, error)
	OnLogout()
}

type syncService struct {
	guestStore repository.GuestStore
	remote     RemoteClient
	session    SessionOracle
	cart       refresher
	wishlist   refresher

	mu        sync.Mutex
	synced    bool
	syncedGen uint64
}

func NewSyncService(
	guestStore repository.GuestStore,
	remote RemoteClient,
	oracle SessionOracle,
	cart refresher,
	wishlist refresher,
) SyncService {
	return &syncService{
		guestStore: guestStore,
		remote:     remote,
		session:    oracle,
		cart:       cart,
		wishlist:   wishlist,
	}
}

// OnLogin runs the reconciliation. The guard is taken before any
// network call, so a duplicate trigger can never double-submit guest
// items. It is keyed on the session generation: any drop back to guest
// mode, including a server-forced invalidation, starts a new
// guest-to-authenticated transition whose login must merge again.
func (s *syncService) OnLogin(ctx context.Context) (*SyncReport, error) {
	gen := s.session.Generation()

	s.mu.Lock()
	if s.synced && s.syncedGen == gen {
		s.mu.Unlock()
		logger.Info("Reconciliation already ran for this session, skipping", nil)
		return &SyncReport{Skipped: apperrors.SyncAlreadyDone}, nil
	}
	s.synced = true
	s.syncedGen = gen
	s.mu.Unlock()

	cartItems, err := s.guestStore.LoadCart(ctx)
	if err != nil {
		logger.Error("Failed to load guest cart for reconciliation", err, nil)
	}
	wishlistItems, err := s.guestStore.LoadWishlist(ctx)
	if err != nil {
		logger.Error("Failed to load guest wishlist for reconciliation", err, nil)
	}

	if len(cartItems) == 0 && len(wishlistItems) == 0 {
		logger.Info("Guest snapshot empty, nothing to sync", nil)
		return &SyncReport{Skipped: apperrors.SyncNothingToDo}, nil
	}

	// Non-customer roles are not synced; their guest snapshot stays on
	// the device in case the user later logs in as a customer.
	if role := s.session.Role(); role != session.RoleCustomer {
		logger.Info("Skipping reconciliation for non-customer role", map[string]interface{}{
			"role": role,
		})
		return &SyncReport{Skipped: apperrors.SyncRoleSkipped}, nil
	}

	report := &SyncReport{}

	// Per-item merges. A failure on one item does not abort the others.
	for _, item := range cartItems {
		_, err := s.remote.AddCartItem(ctx, vegapi.AddCartItemRequest{
			VegetableID: item.VegetableID,
			Quantity:    item.Quantity,
		})
		if err != nil {
			report.CartFailed++
			logger.Warn("Failed to merge guest cart item", map[string]interface{}{
				"vegetable_id": item.VegetableID,
				"error":        err.Error(),
			})
			continue
		}
		report.CartMerged++
	}

	for _, item := range wishlistItems {
		_, err := s.remote.AddWishlistItem(ctx, vegapi.AddWishlistItemRequest{
			VegetableID: item.VegetableID,
		})
		if err != nil {
			report.WishlistFailed++
			logger.Warn("Failed to merge guest wishlist item", map[string]interface{}{
				"vegetable_id": item.VegetableID,
				"error":        err.Error(),
			})
			continue
		}
		report.WishlistMerged++
	}

	// The guest snapshot is cleared once the batch settles, even when
	// individual merges failed. Items that failed to merge are gone;
	// re-running the batch on the next login would double-submit the
	// ones that did merge.
	if err := s.guestStore.ClearCart(ctx); err != nil {
		logger.Error("Failed to clear guest cart after reconciliation", err, nil)
	}
	if err := s.guestStore.ClearWishlist(ctx); err != nil {
		logger.Error("Failed to clear guest wishlist after reconciliation", err, nil)
	}

	// The server is authoritative from here on; reload the canonical
	// collections.
	if err := s.cart.Refresh(ctx); err != nil {
		logger.Error("Failed to reload cart after reconciliation", err, nil)
	}
	if err := s.wishlist.Refresh(ctx); err != nil {
		logger.Error("Failed to reload wishlist after reconciliation", err, nil)
	}

	logger.Info("Reconciliation completed", map[string]interface{}{
		"cart_merged":     report.CartMerged,
		"cart_failed":     report.CartFailed,
		"wishlist_merged": report.WishlistMerged,
		"wishlist_failed": report.WishlistFailed,
	})
	return report, nil
}

// OnLogout re-arms the once-per-transition guard.
func (s *syncService) OnLogout() {
	s.mu.Lock()
	s.synced = false
	s.mu.Unlock()
}
