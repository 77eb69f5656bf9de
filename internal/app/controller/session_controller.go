package controller

import (
	"net/http"

	"github.com/freshveg/basket-agent/internal/app/service"
	apperrors "github.com/freshveg/basket-agent/internal/errors"
	"github.com/freshveg/basket-agent/internal/middleware"
	"github.com/freshveg/basket-agent/internal/session"
	"github.com/gin-gonic/gin"
)

type SessionController struct {
	session         *session.Session
	syncService     service.SyncService
	cartService     service.CartService
	wishlistService service.WishlistService
}

func NewSessionController(
	sess *session.Session,
	syncService service.SyncService,
	cartService service.CartService,
	wishlistService service.WishlistService,
) *SessionController {
	return &SessionController{
		session:         sess,
		syncService:     syncService,
		cartService:     cartService,
		wishlistService: wishlistService,
	}
}

type LoginRequest struct {
	Token string `json:"token" binding:"required"`
}

// Login installs the access token and runs the one-time reconciliation
// POST /api/v1/session/login
func (ctrl *SessionController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	if err := ctrl.session.SetToken(req.Token); err != nil {
		apperrors.BadRequest(c, apperrors.SessionTokenInvalid, "Invalid session token")
		return
	}

	report, err := ctrl.syncService.OnLogin(c.Request.Context())
	if err != nil {
		log.Error("Reconciliation failed", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	// The server owns the collections now; load them regardless of
	// whether anything was merged.
	if err := ctrl.cartService.Refresh(c.Request.Context()); err != nil {
		log.Error("Cart load after login failed", err, nil)
	}
	if err := ctrl.wishlistService.Refresh(c.Request.Context()); err != nil {
		log.Error("Wishlist load after login failed", err, nil)
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": ctrl.session.IsAuthenticated(),
		"role":          ctrl.session.Role(),
		"sync":          report,
	})
}

// Logout clears the session and the in-memory collections. The guest
// snapshot on the device is kept.
// POST /api/v1/session/logout
func (ctrl *SessionController) Logout(c *gin.Context) {
	ctrl.session.Clear()
	ctrl.syncService.OnLogout()
	ctrl.cartService.Clear()
	ctrl.wishlistService.Clear()

	c.JSON(http.StatusOK, gin.H{
		"authenticated": false,
	})
}

// Status reports the current session state
// GET /api/v1/session
func (ctrl *SessionController) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"authenticated": ctrl.session.IsAuthenticated(),
		"role":          ctrl.session.Role(),
	})
}
