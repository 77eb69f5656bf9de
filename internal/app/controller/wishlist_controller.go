package controller

import (
	"net/http"

	"github.com/freshveg/basket-agent/internal/app/model"
	"github.com/freshveg/basket-agent/internal/app/service"
	apperrors "github.com/freshveg/basket-agent/internal/errors"
	"github.com/freshveg/basket-agent/internal/middleware"
	"github.com/gin-gonic/gin"
)

type WishlistController struct {
	wishlistService service.WishlistService
}

func NewWishlistController(wishlistService service.WishlistService) *WishlistController {
	return &WishlistController{
		wishlistService: wishlistService,
	}
}

type ToggleWishlistRequest struct {
	VegetableID uint    `json:"vegetable_id" binding:"required"`
	Name        string  `json:"name"`
	ImageURL    string  `json:"image_url"`
	Unit        string  `json:"unit"`
	Price       float64 `json:"price"`
}

// GetWishlist returns the current wishlist
// GET /api/v1/wishlist
func (ctrl *WishlistController) GetWishlist(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"items": ctrl.wishlistService.Items(),
		"count": ctrl.wishlistService.Count(),
	})
}

// Toggle flips wishlist membership. This is the only membership entry
// point; there are no separate add/remove routes.
// POST /api/v1/wishlist/toggle
func (ctrl *WishlistController) Toggle(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ToggleWishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid wishlist toggle request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	veg := model.Vegetable{
		ID:       req.VegetableID,
		Name:     req.Name,
		ImageURL: req.ImageURL,
		Unit:     req.Unit,
		Price:    req.Price,
	}
	wishlisted, err := ctrl.wishlistService.Toggle(veg)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid vegetable ID")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"vegetable_id": req.VegetableID,
		"wishlisted":   wishlisted,
		"count":        ctrl.wishlistService.Count(),
	})
}

// Contains answers O(1) membership for list screens
// GET /api/v1/wishlist/contains/:vegetable_id
func (ctrl *WishlistController) Contains(c *gin.Context) {
	vegetableID, ok := parseVegetableID(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"vegetable_id": vegetableID,
		"wishlisted":   ctrl.wishlistService.IsWishlisted(vegetableID),
	})
}

// Refresh re-loads the canonical collection from its current backend
// POST /api/v1/wishlist/refresh
func (ctrl *WishlistController) Refresh(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if err := ctrl.wishlistService.Refresh(c.Request.Context()); err != nil {
		log.Error("Wishlist refresh failed", err, nil)
		apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.WishlistLoadFailed, "Could not load wishlist")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": ctrl.wishlistService.Items(),
		"count": ctrl.wishlistService.Count(),
	})
}
