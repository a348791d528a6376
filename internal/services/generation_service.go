package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"herotime/internal/models/db_models"
	"herotime/internal/models/request_models"
	"herotime/internal/models/response_models"
	"herotime/internal/repositories"
	"herotime/pkg/inference"
	"herotime/pkg/storage"
	"herotime/pkg/utils"
)

const (
	defaultPageSize = 12
	maxPageSize     = 100
)

type GenerationService interface {
	// RequestGeneration runs the full upload-to-durable-image pipeline for one request.
	RequestGeneration(ctx context.Context, userID string, req request_models.GenerateImageRequest) (*GenerationOutcome, error)
	ListGenerations(ctx context.Context, userID string, page, limit int) (*response_models.GenerationListResponse, error)
	CreateGeneration(ctx context.Context, userID string, req request_models.CreateGenerationRequest) (*response_models.GenerationResponse, error)
	// DeleteGeneration removes the row only. Unknown or foreign ids are a no-op.
	DeleteGeneration(ctx context.Context, userID, id string) error
	// DeleteGenerationWithAssets removes the row and both stored images.
	DeleteGenerationWithAssets(ctx context.Context, userID, id string) error
}

type generationService struct {
	generations repositories.GenerationRepository
	users       repositories.UserRepository
	store       storage.Storage
	predictor   inference.Client
	catalog     CatalogService
	prompts     PromptServiceInterface
}

func NewGenerationService(
	generations repositories.GenerationRepository,
	users repositories.UserRepository,
	store storage.Storage,
	predictor inference.Client,
	catalog CatalogService,
	prompts PromptServiceInterface,
) GenerationService {
	return &generationService{
		generations: generations,
		users:       users,
		store:       store,
		predictor:   predictor,
		catalog:     catalog,
		prompts:     prompts,
	}
}

func (s *generationService) ListGenerations(ctx context.Context, userID string, page, limit int) (*response_models.GenerationListResponse, error) {
	if page < 1 {
		return nil, utils.ErrInvalidPage
	}
	if limit < 1 || limit > maxPageSize {
		return nil, utils.ErrInvalidPageSize
	}

	offset := (page - 1) * limit
	rows, total, err := s.generations.ListByUser(ctx, userID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list generations: %v", utils.ErrDatabaseError, err)
	}

	items := make([]response_models.GenerationResponse, 0, len(rows))
	for i := range rows {
		items = append(items, toGenerationResponse(&rows[i]))
	}

	return &response_models.GenerationListResponse{
		Generations: items,
		Pagination: response_models.Pagination{
			Page:    page,
			Limit:   limit,
			Total:   total,
			HasMore: int64(offset+len(rows)) < total,
		},
	}, nil
}

func (s *generationService) CreateGeneration(ctx context.Context, userID string, req request_models.CreateGenerationRequest) (*response_models.GenerationResponse, error) {
	if strings.TrimSpace(req.ImageURL) == "" {
		return nil, utils.ErrMissingImageURL
	}

	imageURL := req.ImageURL
	generation := &db_models.Generation{
		UserID:           userID,
		Title:            req.Title,
		Status:           db_models.GenerationSucceeded,
		ImageURL:         &imageURL,
		UploadedImageURL: req.UploadedImageURL,
		SelectedProps:    datatypes.NewJSONType(nonNilProps(req.SelectedProps)),
		SelectedTemplate: req.SelectedTemplate,
	}
	if err := s.generations.Create(ctx, generation); err != nil {
		return nil, fmt.Errorf("%w: create generation: %v", utils.ErrDatabaseError, err)
	}

	resp := toGenerationResponse(generation)
	return &resp, nil
}

func (s *generationService) DeleteGeneration(ctx context.Context, userID, id string) error {
	if strings.TrimSpace(id) == "" {
		return utils.ErrMissingGenerationID
	}
	genID, err := uuid.Parse(id)
	if err != nil {
		// not an id we could have issued, so nothing of the caller's matches
		return nil
	}

	n, err := s.generations.DeleteForUser(ctx, genID, userID)
	if err != nil {
		return fmt.Errorf("%w: delete generation: %v", utils.ErrDatabaseError, err)
	}
	if n == 0 {
		log.WithFields(log.Fields{"user_id": userID, "generation_id": id}).Debug("delete matched no generation")
	}
	return nil
}

func (s *generationService) DeleteGenerationWithAssets(ctx context.Context, userID, id string) error {
	if strings.TrimSpace(id) == "" {
		return utils.ErrMissingGenerationID
	}
	genID, err := uuid.Parse(id)
	if err != nil {
		return utils.ErrGenerationNotFound
	}

	generation, err := s.generations.FindByIDForUser(ctx, genID, userID)
	if err != nil {
		return fmt.Errorf("%w: find generation: %v", utils.ErrDatabaseError, err)
	}
	if generation == nil {
		return utils.ErrGenerationNotFound
	}

	logger := log.WithFields(log.Fields{"user_id": userID, "generation_id": id})
	s.deleteAsset(ctx, logger, generation.ImageURL, storage.BucketUserGenerations)
	s.deleteAsset(ctx, logger, generation.UploadedImageURL, storage.BucketUserUploads)

	if _, err := s.generations.DeleteForUser(ctx, genID, userID); err != nil {
		return fmt.Errorf("%w: delete generation: %v", utils.ErrDatabaseError, err)
	}
	return nil
}

func (s *generationService) deleteAsset(ctx context.Context, logger *log.Entry, url *string, bucket string) {
	if url == nil {
		return
	}
	path, ok := storage.PathFromPublicURL(*url, bucket)
	if !ok {
		return
	}
	if err := s.store.Delete(ctx, bucket, path); err != nil {
		logger.WithError(err).WithFields(log.Fields{"bucket": bucket, "path": path}).Warn("failed to delete generation asset")
	}
}

func toGenerationResponse(g *db_models.Generation) response_models.GenerationResponse {
	return response_models.GenerationResponse{
		ID:               g.ID.String(),
		UserID:           g.UserID,
		Title:            g.Title,
		Status:           string(g.Status),
		UploadedImageURL: g.UploadedImageURL,
		ImageURL:         g.ImageURL,
		SelectedProps:    g.Props(),
		SelectedTemplate: g.SelectedTemplate,
		PredictionID:     g.PredictionID,
		Error:            g.Error,
		FileSize:         g.FileSize,
		CreatedAt:        utils.FormatUnixMillis(g.CreatedAt),
		UpdatedAt:        utils.FormatUnixMillis(g.UpdatedAt),
	}
}

func nonNilProps(props []db_models.SelectedProp) []db_models.SelectedProp {
	if props == nil {
		return []db_models.SelectedProp{}
	}
	return props
}
