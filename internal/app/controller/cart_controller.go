package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/freshveg/basket-agent/internal/app/model"
	"github.com/freshveg/basket-agent/internal/app/service"
	apperrors "github.com/freshveg/basket-agent/internal/errors"
	"github.com/freshveg/basket-agent/internal/middleware"
	"github.com/gin-gonic/gin"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddToCartRequest struct {
	VegetableID uint    `json:"vegetable_id" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	ImageURL    string  `json:"image_url"`
	Unit        string  `json:"unit"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity" binding:"required"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// GetCart returns the current cart with derived aggregates
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"items":           ctrl.cartService.Items(),
		"total_amount":    ctrl.cartService.TotalAmount(),
		"item_count":      ctrl.cartService.ItemCount(),
		"addresses":       ctrl.cartService.Addresses(),
		"payment_methods": ctrl.cartService.PaymentMethods(),
	})
}

// AddItem applies an optimistic add
// POST /api/v1/cart/items
func (ctrl *CartController) AddItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
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
	if err := ctrl.cartService.Add(veg, req.Quantity); err != nil {
		if errors.Is(err, service.ErrInvalidQuantity) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidQuantity, "Quantity must be between 1 and 99")
			return
		}
		log.Error("Failed to add item to cart", err, map[string]interface{}{
			"vegetable_id": req.VegetableID,
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"items":        ctrl.cartService.Items(),
		"total_amount": ctrl.cartService.TotalAmount(),
		"item_count":   ctrl.cartService.ItemCount(),
	})
}

// UpdateItem applies an optimistic quantity change
// PUT /api/v1/cart/items/:vegetable_id
func (ctrl *CartController) UpdateItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	vegetableID, ok := parseVegetableID(c)
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid quantity update request", map[string]interface{}{
			"vegetable_id": vegetableID,
			"error":        err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	if err := ctrl.cartService.SetQuantity(vegetableID, req.Quantity); err != nil {
		if errors.Is(err, service.ErrInvalidQuantity) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidQuantity, "Quantity must be between 1 and 99")
			return
		}
		if errors.Is(err, service.ErrCartItemNotFound) {
			apperrors.NotFound(c, apperrors.CartItemNotFound, "Cart item not found")
			return
		}
		log.Error("Failed to update cart item", err, map[string]interface{}{
			"vegetable_id": vegetableID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"items":        ctrl.cartService.Items(),
		"total_amount": ctrl.cartService.TotalAmount(),
		"item_count":   ctrl.cartService.ItemCount(),
	})
}

// RemoveItem applies an optimistic remove. Removing an absent item is a
// no-op, not an error.
// DELETE /api/v1/cart/items/:vegetable_id
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	vegetableID, ok := parseVegetableID(c)
	if !ok {
		return
	}

	ctrl.cartService.Remove(vegetableID)

	c.JSON(http.StatusAccepted, gin.H{
		"items":        ctrl.cartService.Items(),
		"total_amount": ctrl.cartService.TotalAmount(),
		"item_count":   ctrl.cartService.ItemCount(),
	})
}

// Refresh re-loads the canonical collection from its current backend
// POST /api/v1/cart/refresh
func (ctrl *CartController) Refresh(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if err := ctrl.cartService.Refresh(c.Request.Context()); err != nil {
		log.Error("Cart refresh failed", err, nil)
		apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.CartLoadFailed, "Could not load cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":        ctrl.cartService.Items(),
		"total_amount": ctrl.cartService.TotalAmount(),
		"item_count":   ctrl.cartService.ItemCount(),
	})
}

func parseVegetableID(c *gin.Context) (uint, bool) {
	idStr := c.Param("vegetable_id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid vegetable ID")
		return 0, false
	}
	return uint(id), true
}
