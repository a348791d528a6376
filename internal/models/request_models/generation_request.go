package request_models

import "herotime/internal/models/db_models"

type ImageOptions struct {
	Size        string `json:"size"`
	AspectRatio string `json:"aspectRatio"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Prompt      string `json:"prompt"`
}

type GenerateImageRequest struct {
	UploadedImage     string                   `json:"uploadedImage"`
	UploadedImagePath string                   `json:"uploadedImagePath"`
	SelectedProps     []db_models.SelectedProp `json:"selectedProps"`
	SelectedTemplate  string                   `json:"selectedTemplate"`
	Options           *ImageOptions            `json:"options"`
}

type CreateGenerationRequest struct {
	Title            *string                  `json:"title"`
	ImageURL         string                   `json:"image_url"`
	UploadedImageURL *string                  `json:"uploaded_image_url"`
	SelectedProps    []db_models.SelectedProp `json:"selected_props"`
	SelectedTemplate *string                  `json:"selected_template"`
}

type DeleteGenerationRequest struct {
	GenerationID string `json:"generationId"`
}

type ListGenerationsQuery struct {
	Page  int `form:"page,default=1"`
	Limit int `form:"limit,default=12"`
}

type UploadImageRequest struct {
	File   string `json:"file" binding:"required"`
	Folder string `json:"folder"`
}
