package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"herotime/internal/models/request_models"
	"herotime/internal/services"
	"herotime/pkg/utils"
)

type GenerationController struct {
	generationService services.GenerationService
}

func NewGenerationController(generationService services.GenerationService) *GenerationController {
	return &GenerationController{
		generationService: generationService,
	}
}

// GenerateImage godoc
// @Summary Generate a hero image
// @Description Runs the image model on the uploaded photo with the selected props and template
// @Tags Generations
// @Accept json
// @Produce json
// @Param request body request_models.GenerateImageRequest true "Generation payload"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/generate-image [post]
func (g *GenerationController) GenerateImage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req request_models.GenerateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	outcome, err := g.generationService.RequestGeneration(c.Request.Context(), userID, req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, outcome.Result, "Image generated successfully")
}

// ListGenerations godoc
// @Summary List the caller's generations
// @Tags Generations
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(12)
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/generations [get]
func (g *GenerationController) ListGenerations(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var query request_models.ListGenerationsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid pagination parameters")
		return
	}

	resp, err := g.generationService.ListGenerations(c.Request.Context(), userID, query.Page, query.Limit)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, resp, "Generations retrieved successfully")
}

func (g *GenerationController) CreateGeneration(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req request_models.CreateGenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	generation, err := g.generationService.CreateGeneration(c.Request.Context(), userID, req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, gin.H{"generation": generation}, "Generation created successfully")
}

func (g *GenerationController) DeleteGeneration(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := g.generationService.DeleteGeneration(c.Request.Context(), userID, c.Query("id")); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, gin.H{"success": true}, "Generation deleted successfully")
}

// DeleteGenerationWithAssets removes the generation and its stored images.
func (g *GenerationController) DeleteGenerationWithAssets(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req request_models.DeleteGenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := g.generationService.DeleteGenerationWithAssets(c.Request.Context(), userID, req.GenerationID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, gin.H{"success": true}, "Generation deleted successfully")
}
