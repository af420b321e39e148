package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/nekogravitycat/resource-booking-backend/internal/pkg/storage"
)

// UploadInput describes one multipart upload and the limits it must satisfy.
type UploadInput struct {
	FileHeader   *multipart.FileHeader
	UserID       string
	MaxSizeBytes int64    // 0 = no limit
	AllowedTypes []string // empty = allow all
	Thumbnail    bool     // require an image and store a thumbnail next to it
}

type Service interface {
	Upload(ctx context.Context, in UploadInput) (*File, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*File, error)
	Download(ctx context.Context, id string) (io.ReadCloser, *File, error)
	DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *File, error)
}

type service struct {
	repo    Repository
	storage storage.Storage
	imgProc *storage.ImageProcessor
}

func NewService(repo Repository, store storage.Storage) Service {
	return &service{
		repo:    repo,
		storage: store,
		imgProc: storage.NewImageProcessor(),
	}
}

func (s *service) Upload(ctx context.Context, in UploadInput) (*File, error) {
	header := in.FileHeader
	if in.MaxSizeBytes > 0 && header.Size > in.MaxSizeBytes {
		return nil, ErrTooLarge
	}

	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	fileBytes, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}

	// Trust the bytes, not the client-supplied header.
	mt := mimetype.Detect(fileBytes)
	contentType := mt.String()
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	if len(in.AllowedTypes) > 0 && !slices.Contains(in.AllowedTypes, contentType) {
		return nil, ErrTypeNotAllowed
	}

	fileID := uuid.New().String()
	shard := fileID[:2]
	storagePath := path.Join("upload", shard, fileID+mt.Extension())

	var (
		thumbnail     *bytes.Buffer
		thumbnailPath *string
	)
	if in.Thumbnail {
		thumbnail, err = s.imgProc.Thumbnail(bytes.NewReader(fileBytes), storage.ThumbnailWidth, storage.ThumbnailHeight)
		if err != nil {
			return nil, ErrNotAnImage
		}
	}

	if err := s.storage.Save(ctx, storagePath, contentType, bytes.NewReader(fileBytes)); err != nil {
		return nil, fmt.Errorf("failed to save file to storage: %w", err)
	}

	if thumbnail != nil {
		tPath := path.Join("upload", shard, fileID+"_thumb.jpg")
		if err := s.storage.Save(ctx, tPath, "image/jpeg", thumbnail); err != nil {
			log.Warn().Err(err).Str("file_id", fileID).Msg("failed to store thumbnail")
		} else {
			thumbnailPath = &tPath
		}
	}

	f := &File{
		ID:            fileID,
		Filename:      path.Base(header.Filename),
		StoragePath:   storagePath,
		ThumbnailPath: thumbnailPath,
		ContentType:   contentType,
		Size:          int64(len(fileBytes)),
	}
	if in.UserID != "" {
		f.UploadedBy = &in.UserID
	}

	if err := s.repo.Create(ctx, f); err != nil {
		s.removeBlobs(ctx, f)
		return nil, err
	}

	return f, nil
}

func (s *service) removeBlobs(ctx context.Context, f *File) {
	if err := s.storage.Delete(ctx, f.StoragePath); err != nil {
		log.Warn().Err(err).Str("path", f.StoragePath).Msg("failed to delete stored file")
	}
	if f.ThumbnailPath != nil {
		if err := s.storage.Delete(ctx, *f.ThumbnailPath); err != nil {
			log.Warn().Err(err).Str("path", *f.ThumbnailPath).Msg("failed to delete stored thumbnail")
		}
	}
}

func (s *service) Delete(ctx context.Context, id string) error {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.removeBlobs(ctx, f)
	return nil
}

func (s *service) Get(ctx context.Context, id string) (*File, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) open(ctx context.Context, p string) (io.ReadCloser, error) {
	stream, err := s.storage.Get(ctx, p)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve file from storage: %w", err)
	}
	return stream, nil
}

func (s *service) Download(ctx context.Context, id string) (io.ReadCloser, *File, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	stream, err := s.open(ctx, f.StoragePath)
	if err != nil {
		return nil, nil, err
	}
	return stream, f, nil
}

func (s *service) DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *File, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if f.ThumbnailPath == nil {
		return nil, nil, ErrThumbnailUnavailable
	}

	stream, err := s.open(ctx, *f.ThumbnailPath)
	if err != nil {
		return nil, nil, err
	}
	return stream, f, nil
}
