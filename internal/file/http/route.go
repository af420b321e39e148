package http

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the download routes for resource images.
// Uploads go through the owning resource (POST /resources/:id/image).
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/files")

	group.Use(authMiddleware)
	{
		group.GET("/:id", h.ServeFile)
		group.GET("/:id/thumbnail", h.ServeThumbnail)
	}
}
