package scheduler

import (
	"context"
	"time"

	"github.com/freshveg/basket-agent/internal/app/service"
	"github.com/freshveg/basket-agent/internal/session"
	"github.com/freshveg/basket-agent/pkg/logger"
	"github.com/robfig/cron/v3"
)

// RefreshScheduler periodically re-fetches the server-owned collections
// while a session is active, so prices and availability drift is
// bounded even without user activity.
type RefreshScheduler struct {
	cron     *cron.Cron
	session  *session.Session
	cart     service.CartService
	wishlist service.WishlistService
	spec     string
}

func NewRefreshScheduler(sess *session.Session, cart service.CartService, wishlist service.WishlistService, spec string) *RefreshScheduler {
	return &RefreshScheduler{
		cron:     cron.New(),
		session:  sess,
		cart:     cart,
		wishlist: wishlist,
		spec:     spec,
	}
}

// Start registers the refresh job and starts the scheduler.
func (s *RefreshScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		if !s.session.IsAuthenticated() {
			return
		}
		logger.Debug("Running scheduled collection refresh", nil)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.cart.Refresh(ctx); err != nil {
			logger.Error("Scheduled cart refresh failed", err, nil)
		}
		if err := s.wishlist.Refresh(ctx); err != nil {
			logger.Error("Scheduled wishlist refresh failed", err, nil)
		}
	})
	if err != nil {
		logger.Error("Failed to register refresh job", err, nil)
		return err
	}

	s.cron.Start()
	logger.Info("Refresh scheduler started", map[string]interface{}{
		"spec": s.spec,
	})
	return nil
}

// Stop stops the scheduler.
func (s *RefreshScheduler) Stop() {
	s.cron.Stop()
	logger.Info("Refresh scheduler stopped", nil)
}
