package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/resource-booking-backend/internal/logger"
	"github.com/nekogravitycat/resource-booking-backend/internal/pkg/apperror"
)

// ErrorResponse defines the JSON structure for error responses.
type ErrorResponse struct {
	Error   string        `json:"error"`
	Kind    apperror.Kind `json:"kind,omitempty"`
	Field   string        `json:"field,omitempty"`
	Details string        `json:"details,omitempty"`
}

// Error sends a JSON error response.
// AppErrors carry their own status code; anything else is logged and reported as 500.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		if appErr.Code >= http.StatusInternalServerError {
			logger.ErrorWithStack(err).Str("path", c.FullPath()).Msg("request failed")
		}
		c.JSON(appErr.Code, ErrorResponse{Error: appErr.Message, Kind: appErr.Kind, Field: appErr.Field})
		return
	}

	logger.ErrorWithStack(err).Str("method", c.Request.Method).Str("path", c.FullPath()).Msg("unhandled error")
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// InvalidInput reports a binding or parsing failure.
func InvalidInput(c *gin.Context, message string, err error) {
	resp := ErrorResponse{Error: message, Kind: apperror.KindInvalidInput}
	if err != nil {
		resp.Details = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}
