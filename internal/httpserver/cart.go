package httpserver

import (
	"net/http"

	"ecomweb/internal/domain"

	"github.com/gin-gonic/gin"
)

type addToCartRequest struct {
	UserID    int64 `json:"userId" binding:"required"`
	ProductID int64 `json:"productId" binding:"required"`
	Quantity  int   `json:"quantity"`
}

func (h *handlers) addToCart(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	item, err := h.deps.CartSvc.AddItem(c.Request.Context(), req.UserID, req.ProductID, req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "product added to cart",
		"cartItem": item,
	})
}

func (h *handlers) cartLines(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	lines, err := h.deps.CartSvc.Lines(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if lines == nil {
		lines = []domain.CartLine{}
	}
	c.JSON(http.StatusOK, lines)
}

func (h *handlers) cartTotal(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	total, err := h.deps.CartSvc.Total(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"totalCents": total})
}

func (h *handlers) cartCount(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	count, err := h.deps.CartSvc.Count(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

type updateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (h *handlers) updateCartItem(c *gin.Context) {
	itemID, ok := pathID(c, "cartItemId")
	if !ok {
		return
	}
	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	item, err := h.deps.CartSvc.SetQuantity(c.Request.Context(), itemID, *req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if item == nil {
		c.JSON(http.StatusOK, gin.H{"message": "cart item removed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "cart item updated",
		"cartItem": item,
	})
}

func (h *handlers) removeCartItem(c *gin.Context) {
	itemID, ok := pathID(c, "cartItemId")
	if !ok {
		return
	}
	if err := h.deps.CartSvc.Remove(c.Request.Context(), itemID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cart item removed"})
}

func (h *handlers) clearCart(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	if err := h.deps.CartSvc.Clear(c.Request.Context(), userID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
}
