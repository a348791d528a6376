package db_models

import "gorm.io/datatypes"

type GenerationStatus string

const (
	GenerationStarting   GenerationStatus = "starting"
	GenerationProcessing GenerationStatus = "processing"
	GenerationSucceeded  GenerationStatus = "succeeded"
	GenerationFailed     GenerationStatus = "failed"
)

// SelectedProp is one prop placed on the hero, in the order the user picked it.
type SelectedProp struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Image    string `json:"image"`
	Position string `json:"position"`
}

type Generation struct {
	BaseModel
	UserID string `gorm:"size:64;index;not null"`
	Title  *string

	Status           GenerationStatus `gorm:"size:16;index;not null"`
	UploadedImageURL *string
	ImageURL         *string

	SelectedProps    datatypes.JSONType[[]SelectedProp]
	SelectedTemplate *string

	PredictionID *string `gorm:"index"`
	Error        *string
	FileSize     *string
}

// Props returns the selected props, never nil.
func (g *Generation) Props() []SelectedProp {
	props := g.SelectedProps.Data()
	if props == nil {
		return []SelectedProp{}
	}
	return props
}

// InFlight reports whether the generation has not reached a terminal status.
func (g *Generation) InFlight() bool {
	return g.Status == GenerationStarting || g.Status == GenerationProcessing
}
