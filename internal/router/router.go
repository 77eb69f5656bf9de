package router

import (
	"net/http"

	"github.com/freshveg/basket-agent/config"
	"github.com/freshveg/basket-agent/internal/app/controller"
	"github.com/freshveg/basket-agent/internal/middleware"
	"github.com/gin-gonic/gin"
)

type Router struct {
	cartController     *controller.CartController
	wishlistController *controller.WishlistController
	sessionController  *controller.SessionController
	badgeController    *controller.BadgeController
	cfg                *config.Config
}

func NewRouter(
	cartController *controller.CartController,
	wishlistController *controller.WishlistController,
	sessionController *controller.SessionController,
	badgeController *controller.BadgeController,
	cfg *config.Config,
) *Router {
	return &Router{
		cartController:     cartController,
		wishlistController: wishlistController,
		sessionController:  sessionController,
		badgeController:    badgeController,
		cfg:                cfg,
	}
}

// Setup builds the gin engine for the local UI surface.
func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.cfg.Server.GinMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.LoggingMiddleware())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := engine.Group("/api/v1")
	{
		cart := v1.Group("/cart")
		{
			cart.GET("", r.cartController.GetCart)
			cart.POST("/items", r.cartController.AddItem)
			cart.PUT("/items/:vegetable_id", r.cartController.UpdateItem)
			cart.DELETE("/items/:vegetable_id", r.cartController.RemoveItem)
			cart.POST("/refresh", r.cartController.Refresh)
		}

		wishlist := v1.Group("/wishlist")
		{
			wishlist.GET("", r.wishlistController.GetWishlist)
			wishlist.POST("/toggle", r.wishlistController.Toggle)
			wishlist.GET("/contains/:vegetable_id", r.wishlistController.Contains)
			wishlist.POST("/refresh", r.wishlistController.Refresh)
		}

		sessionGroup := v1.Group("/session")
		{
			sessionGroup.GET("", r.sessionController.Status)
			sessionGroup.POST("/login", r.sessionController.Login)
			sessionGroup.POST("/logout", r.sessionController.Logout)
		}

		badges := v1.Group("/badges")
		{
			badges.GET("", r.badgeController.GetBadges)
			badges.GET("/events", r.badgeController.Events)
		}
	}

	return engine
}
