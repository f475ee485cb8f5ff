package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handlers) dashboardStats(c *gin.Context) {
	ctx := c.Request.Context()

	userCount, err := h.deps.UserSvc.Count(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}
	productCount, err := h.deps.CatalogSvc.Count(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}
	orderCount, err := h.deps.OrderSvc.Count(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}
	revenue, err := h.deps.OrderSvc.Revenue(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}
	orderStats, err := h.deps.OrderSvc.Stats(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"totalUsers":    userCount,
		"totalProducts": productCount,
		"totalOrders":   orderCount,
		"pendingOrders": orderStats["pendingOrders"],
		"revenueCents":  revenue,
	})
}
