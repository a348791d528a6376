package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"herotime/internal/models/db_models"
	"herotime/internal/models/request_models"
	"herotime/internal/models/response_models"
	"herotime/pkg/inference"
	"herotime/pkg/storage"
	"herotime/pkg/utils"
)

func (s *generationService) RequestGeneration(ctx context.Context, userID string, req request_models.GenerateImageRequest) (*GenerationOutcome, error) {
	if strings.TrimSpace(req.UploadedImage) == "" {
		return nil, utils.ErrMissingUploadedImage
	}

	logger := log.WithField("user_id", userID)

	// Reserve one unit up front. No row is written when the quota is spent.
	reserved, err := s.users.ReserveGeneration(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: reserve generation: %v", utils.ErrDatabaseError, err)
	}
	if !reserved {
		logger.Info("generation limit reached")
		return nil, utils.ErrQuotaExceeded
	}

	var (
		generationID    *uuid.UUID
		createAttempted bool
	)
	fail := func(err error) (*GenerationOutcome, error) {
		s.abort(ctx, logger, userID, generationID, createAttempted, err)
		return nil, classifyGenerationError(err)
	}

	plan := db_models.PlanFree
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return fail(fmt.Errorf("%w: load user: %v", utils.ErrDatabaseError, err))
	}
	if user != nil {
		plan = user.Plan
	}

	params := ResolveImageParams(plan, req.Options)
	params.Prompt = s.prompts.ResolvePrompt(params.Prompt)
	images := s.imageInputs(ctx, req)

	logger.WithFields(log.Fields{
		"plan":         plan,
		"size":         params.Size,
		"width":        params.Width,
		"height":       params.Height,
		"aspect_ratio": params.AspectRatio,
		"images":       len(images),
	}).Info("starting image generation")

	uploaded := req.UploadedImage
	generation := &db_models.Generation{
		UserID:           userID,
		Status:           db_models.GenerationStarting,
		UploadedImageURL: &uploaded,
		SelectedProps:    datatypes.NewJSONType(nonNilProps(req.SelectedProps)),
	}
	if req.SelectedTemplate != "" {
		tmpl := req.SelectedTemplate
		generation.SelectedTemplate = &tmpl
	}
	createAttempted = true
	if err := s.generations.Create(ctx, generation); err != nil {
		return fail(fmt.Errorf("%w: create generation: %v", utils.ErrDatabaseError, err))
	}
	generationID = &generation.ID
	logger = logger.WithField("generation_id", generation.ID.String())

	prediction, err := s.predictor.Submit(ctx, inference.Request{
		Size:        params.Size,
		Width:       params.Width,
		Height:      params.Height,
		AspectRatio: params.AspectRatio,
		Prompt:      params.Prompt,
		ImageInput:  images,
	})
	if err != nil {
		return fail(err)
	}
	logger = logger.WithField("prediction_id", prediction.ID)

	moved, err := s.generations.Transition(ctx, generation.ID,
		[]db_models.GenerationStatus{db_models.GenerationStarting},
		db_models.GenerationProcessing,
		map[string]interface{}{"prediction_id": prediction.ID},
	)
	if err != nil {
		return fail(fmt.Errorf("%w: mark processing: %v", utils.ErrDatabaseError, err))
	}
	if !moved {
		logger.Warn("generation left starting before the prediction was recorded")
	}

	completed, err := s.predictor.Wait(ctx, prediction)
	if err != nil {
		return fail(err)
	}

	providerURL, err := inference.ExtractURL(ctx, completed.Output)
	if err != nil {
		return fail(err)
	}
	logger.Info("prediction completed")

	outcome := &GenerationOutcome{}
	imageURL, fileSize := s.persistResult(ctx, logger, outcome, userID, providerURL, req.UploadedImagePath)

	fields := map[string]interface{}{"image_url": imageURL}
	if fileSize != "" {
		fields["file_size"] = fileSize
	}
	done, err := s.generations.Transition(context.WithoutCancel(ctx), generation.ID,
		[]db_models.GenerationStatus{db_models.GenerationProcessing, db_models.GenerationStarting},
		db_models.GenerationSucceeded,
		fields,
	)
	if err == nil && !done {
		err = errors.New("generation no longer in flight")
	}
	outcome.record(StepMarkSucceeded, err, log.Fields{"generation_id": generation.ID.String()})

	outcome.Result = response_models.GenerateImageResponse{
		GenerationID: generation.ID.String(),
		ImageURL:     imageURL,
		Output:       imageURL,
		ReplicateURL: providerURL,
	}
	return outcome, nil
}

// persistResult copies the provider image into owned storage and, only then, removes the
// source upload. On any failure the provider URL is returned as is.
func (s *generationService) persistResult(
	ctx context.Context,
	logger *log.Entry,
	outcome *GenerationOutcome,
	userID, providerURL, uploadedPath string,
) (imageURL, fileSize string) {
	fields := log.Fields{"user_id": userID}

	data, err := s.predictor.Download(ctx, providerURL)
	if err != nil {
		outcome.record(StepDurableUpload, err, fields)
		return providerURL, ""
	}
	fileSize = utils.FormatFileSize(len(data))

	key := fmt.Sprintf("%s/images/%s.png", userID, uniqueName())
	obj, err := s.store.Upload(ctx, storage.BucketUserGenerations, key, data, "image/png")
	if err != nil {
		outcome.record(StepDurableUpload, err, fields)
		return providerURL, fileSize
	}
	outcome.record(StepDurableUpload, nil, fields)
	logger.WithFields(log.Fields{"path": obj.Path, "file_size": fileSize}).Info("stored generated image")

	if uploadedPath != "" {
		err := s.store.Delete(ctx, storage.BucketUserUploads, uploadedPath)
		outcome.record(StepSourceCleanup, err, log.Fields{"user_id": userID, "path": uploadedPath})
	}
	return obj.URL, fileSize
}

// imageInputs orders the model inputs: source photo, template image, then each prop image.
func (s *generationService) imageInputs(ctx context.Context, req request_models.GenerateImageRequest) []string {
	images := []string{req.UploadedImage}

	if req.SelectedTemplate != "" {
		if tmpl, ok := s.catalog.FindTemplate(ctx, req.SelectedTemplate); ok && tmpl.Image != "" {
			images = append(images, tmpl.Image)
		} else {
			log.WithField("template", req.SelectedTemplate).Warn("selected template not found in catalog")
		}
	}

	for _, prop := range req.SelectedProps {
		if prop.Image != "" {
			images = append(images, prop.Image)
		}
	}
	return images
}

// abort marks the generation failed and gives the reserved quota unit back. Without a known
// id (the insert itself failed) the user's latest in-flight row is marked instead. Both
// writes run on a context detached from the request so a client disconnect does not skip them.
func (s *generationService) abort(ctx context.Context, logger *log.Entry, userID string, generationID *uuid.UUID, createAttempted bool, cause error) {
	ctx = context.WithoutCancel(ctx)
	logger.WithError(cause).Error("image generation failed")

	message := cause.Error()
	var err error
	if generationID != nil {
		_, err = s.generations.Transition(ctx, *generationID,
			[]db_models.GenerationStatus{db_models.GenerationStarting, db_models.GenerationProcessing},
			db_models.GenerationFailed,
			map[string]interface{}{"error": message},
		)
	} else if createAttempted {
		_, err = s.generations.FailLatestInFlight(ctx, userID, message)
	}
	if err != nil {
		logger.WithError(err).Warn("failed to record generation failure")
	}

	if err := s.users.ReleaseGeneration(ctx, userID); err != nil {
		logger.WithError(err).Warn("failed to release reserved generation")
	}
}
