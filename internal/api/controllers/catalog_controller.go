package controllers

import (
	"github.com/gin-gonic/gin"

	"herotime/internal/services"
	"herotime/pkg/utils"
)

// CatalogController serves the public props, templates and plans listings.
type CatalogController struct {
	catalogService services.CatalogService
	planService    services.PlanServiceInterface
}

func NewCatalogController(catalogService services.CatalogService, planService services.PlanServiceInterface) *CatalogController {
	return &CatalogController{
		catalogService: catalogService,
		planService:    planService,
	}
}

// ListProps godoc
// @Summary Prop catalogue grouped by body part
// @Tags Catalog
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Router /api/props [get]
func (cc *CatalogController) ListProps(c *gin.Context) {
	utils.RespondSuccess(c, gin.H{"categories": cc.catalogService.ListProps(c.Request.Context())}, "Props retrieved successfully")
}

// ListTemplates godoc
// @Summary Scene template catalogue
// @Tags Catalog
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Router /api/templates [get]
func (cc *CatalogController) ListTemplates(c *gin.Context) {
	utils.RespondSuccess(c, gin.H{"categories": cc.catalogService.ListTemplates(c.Request.Context())}, "Templates retrieved successfully")
}

func (cc *CatalogController) ListPlans(c *gin.Context) {
	utils.RespondSuccess(c, gin.H{"plans": cc.planService.ListPlans()}, "Plans retrieved successfully")
}
