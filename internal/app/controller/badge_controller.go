package controller

import (
	"net/http"

	"github.com/freshveg/basket-agent/internal/app/service"
	"github.com/freshveg/basket-agent/internal/middleware"
	"github.com/freshveg/basket-agent/internal/websocket"
	"github.com/gin-gonic/gin"
)

type BadgeController struct {
	badges          *service.BadgePublisher
	cartService     service.CartService
	wishlistService service.WishlistService
	hub             *websocket.Hub
}

func NewBadgeController(
	badges *service.BadgePublisher,
	cartService service.CartService,
	wishlistService service.WishlistService,
	hub *websocket.Hub,
) *BadgeController {
	return &BadgeController{
		badges:          badges,
		cartService:     cartService,
		wishlistService: wishlistService,
		hub:             hub,
	}
}

// GetBadges returns the aggregate badge view plus any pending
// validation errors. Reading consumes the error slots.
// GET /api/v1/badges
func (ctrl *BadgeController) GetBadges(c *gin.Context) {
	response := gin.H{
		"badge": ctrl.badges.Snapshot(),
	}
	if dispatchErr := ctrl.cartService.ConsumeDispatchError(); dispatchErr != nil {
		response["cart_error"] = dispatchErr
	}
	if dispatchErr := ctrl.wishlistService.ConsumeDispatchError(); dispatchErr != nil {
		response["wishlist_error"] = dispatchErr
	}
	c.JSON(http.StatusOK, response)
}

// Events upgrades to a WebSocket pushing badge updates
// GET /api/v1/badges/events
func (ctrl *BadgeController) Events(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if err := websocket.Serve(ctrl.hub, c.Writer, c.Request); err != nil {
		log.Error("WebSocket upgrade failed", err, nil)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "WebSocket upgrade failed",
		})
	}
}
