package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/bookings")

	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.GET("/my", h.My)
		group.GET("/calendar", h.Calendar)
		group.GET("/stats", h.Stats)
		group.GET("/:id", h.Get)
		group.POST("", h.Create)
		group.POST("/:id/cancel", h.Cancel)
		group.POST("/:id/extend", h.Extend)
	}

	g.GET("/resources/:id/availability", authMiddleware, h.Availability)
}
