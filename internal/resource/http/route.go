package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers resource routes. Reads are open to any signed-in user; writes need admin.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/resources")

	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.POST("", adminMiddleware, h.Create)
		group.PATCH("/:id", adminMiddleware, h.Update)
		group.DELETE("/:id", adminMiddleware, h.Delete)
		group.POST("/:id/image", adminMiddleware, h.UploadImage)
	}
}
