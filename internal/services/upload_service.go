package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"herotime/internal/models/response_models"
	"herotime/pkg/storage"
	"herotime/pkg/utils"
)

const (
	MaxUploadBytes      = 10 * 1024 * 1024
	defaultUploadFolder = "images"
)

var uploadMimeTypes = map[string]string{
	"image/jpeg": "jpeg",
	"image/jpg":  "jpg",
	"image/png":  "png",
}

type UploadService interface {
	// UploadDataURI stores a base64 data URI image under the user's folder in the uploads bucket.
	UploadDataURI(ctx context.Context, userID, dataURI, folder string) (*response_models.UploadImageResponse, error)
}

type uploadService struct {
	store storage.Storage
}

func NewUploadService(store storage.Storage) UploadService {
	return &uploadService{store: store}
}

func (s *uploadService) UploadDataURI(ctx context.Context, userID, dataURI, folder string) (*response_models.UploadImageResponse, error) {
	if userID == "" {
		return nil, utils.ErrUnauthorized
	}

	parsed, err := utils.ParseDataURI(dataURI)
	if err != nil {
		return nil, err
	}

	ext, ok := uploadMimeTypes[parsed.MimeType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", utils.ErrUnsupportedFileType, parsed.MimeType)
	}
	if len(parsed.Data) > MaxUploadBytes {
		return nil, fmt.Errorf("%w: %s", utils.ErrFileTooLarge, utils.FormatFileSize(len(parsed.Data)))
	}

	folder = strings.Trim(folder, "/")
	if folder == "" || strings.Contains(folder, "..") {
		folder = defaultUploadFolder
	}

	key := fmt.Sprintf("%s/%s/%s.%s", userID, folder, uniqueName(), ext)
	obj, err := s.store.Upload(ctx, storage.BucketUserUploads, key, parsed.Data, parsed.MimeType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrUploadFailed, err)
	}

	return &response_models.UploadImageResponse{URL: obj.URL, Path: obj.Path}, nil
}

// uniqueName is "<unixMillis>-<random>", the object naming used by both buckets.
func uniqueName() string {
	return fmt.Sprintf("%d-%s", utils.NowUnixMillis(), strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}
