package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"herotime/internal/models/request_models"
	"herotime/internal/services"
	"herotime/pkg/utils"
)

type UploadController struct {
	uploadService services.UploadService
}

func NewUploadController(uploadService services.UploadService) *UploadController {
	return &UploadController{
		uploadService: uploadService,
	}
}

// UploadImage godoc
// @Summary Upload a source photo
// @Description Stores a base64 data URI (JPEG or PNG, up to 10MB) in the user's upload folder
// @Tags Uploads
// @Accept json
// @Produce json
// @Param request body request_models.UploadImageRequest true "Upload payload"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/upload-image [post]
func (u *UploadController) UploadImage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req request_models.UploadImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "No file provided")
		return
	}

	resp, err := u.uploadService.UploadDataURI(c.Request.Context(), userID, req.File, req.Folder)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, resp, "Image uploaded successfully")
}
