package response_models

import "herotime/internal/models/db_models"

// GenerationResponse is the snake_case view of a stored generation.
type GenerationResponse struct {
	ID               string                   `json:"id"`
	UserID           string                   `json:"user_id"`
	Title            *string                  `json:"title"`
	Status           string                   `json:"status"`
	UploadedImageURL *string                  `json:"uploaded_image_url"`
	ImageURL         *string                  `json:"image_url"`
	SelectedProps    []db_models.SelectedProp `json:"selected_props"`
	SelectedTemplate *string                  `json:"selected_template"`
	PredictionID     *string                  `json:"prediction_id"`
	Error            *string                  `json:"error"`
	FileSize         *string                  `json:"file_size"`
	CreatedAt        string                   `json:"created_at"`
	UpdatedAt        string                   `json:"updated_at"`
}

type Pagination struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	HasMore bool  `json:"hasMore"`
}

type GenerationListResponse struct {
	Generations []GenerationResponse `json:"generations"`
	Pagination  Pagination           `json:"pagination"`
}

type GenerateImageResponse struct {
	GenerationID string `json:"generationId"`
	ImageURL     string `json:"imageUrl"`
	Output       string `json:"output"`
	ReplicateURL string `json:"replicateUrl"`
}

type UploadImageResponse struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}
