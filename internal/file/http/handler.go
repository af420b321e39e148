package http

import (
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/nekogravitycat/resource-booking-backend/internal/file"
	"github.com/nekogravitycat/resource-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/resource-booking-backend/internal/pkg/response"
)

type Handler struct {
	fileService file.Service
}

func NewHandler(fileService file.Service) *Handler {
	return &Handler{
		fileService: fileService,
	}
}

func stream(c *gin.Context, body io.ReadCloser, contentType, filename string) {
	defer body.Close()

	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": filename}))
	c.Header("Cache-Control", "private, max-age=86400")
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, body); err != nil {
		log.Warn().Err(err).Str("path", c.FullPath()).Msg("file stream interrupted")
	}
}

// ServeFile serves the original upload.
func (h *Handler) ServeFile(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.InvalidInput(c, "invalid file id", err)
		return
	}

	body, f, err := h.fileService.Download(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	stream(c, body, f.ContentType, f.Filename)
}

// ServeThumbnail serves the JPEG thumbnail.
func (h *Handler) ServeThumbnail(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.InvalidInput(c, "invalid file id", err)
		return
	}

	body, f, err := h.fileService.DownloadThumbnail(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	stream(c, body, "image/jpeg", f.Filename+"_thumb.jpg")
}
