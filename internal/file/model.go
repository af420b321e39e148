package file

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/resource-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound             = apperror.New(http.StatusNotFound, apperror.KindNotFound, "file not found")
	ErrThumbnailUnavailable = apperror.New(http.StatusNotFound, apperror.KindNotFound, "thumbnail not available for this file")
	ErrTooLarge             = apperror.New(http.StatusRequestEntityTooLarge, apperror.KindInvalidInput, "file is too large").WithField("file")
	ErrTypeNotAllowed       = apperror.New(http.StatusUnsupportedMediaType, apperror.KindInvalidInput, "file type is not allowed").WithField("file")
	ErrNotAnImage           = apperror.New(http.StatusBadRequest, apperror.KindInvalidInput, "file is not a readable image").WithField("file")
)

// File is an uploaded blob. Resource images are the only producer.
type File struct {
	ID            string
	UploadedBy    *string
	Filename      string
	StoragePath   string
	ThumbnailPath *string
	ContentType   string
	Size          int64
	CreatedAt     time.Time
}

// FileURL returns the public URL for accessing a file by its ID.
func FileURL(id string) string {
	return "/v1/files/" + id
}

// ThumbnailURL returns the public URL for accessing a file's thumbnail by its ID.
func ThumbnailURL(id string) string {
	return "/v1/files/" + id + "/thumbnail"
}
