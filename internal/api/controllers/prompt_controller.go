package controllers

import (
	"github.com/gin-gonic/gin"

	"herotime/internal/services"
	"herotime/pkg/utils"
)

type PromptController struct {
	promptService services.PromptServiceInterface
}

func NewPromptController(promptService services.PromptServiceInterface) *PromptController {
	return &PromptController{
		promptService: promptService,
	}
}

func (p *PromptController) ListPromptTemplates(c *gin.Context) {
	utils.RespondSuccess(c, p.promptService.ListPromptTemplates(), "Prompt templates retrieved successfully")
}
