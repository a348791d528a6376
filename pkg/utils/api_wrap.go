package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// ContextKeyExposeDetails marks requests whose error responses may carry diagnostics.
const ContextKeyExposeDetails = "expose_error_details"

type APIResponse struct {
	Status    string      `json:"status"`
	Code      int         `json:"code"`
	Message   string      `json:"message,omitempty"`
	ErrorCode string      `json:"error_code,omitempty"`
	Details   string      `json:"details,omitempty"`
	TraceID   string      `json:"trace_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: message,
		TraceID: c.GetString("trace_id"),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: c.GetString("trace_id"),
	})
}

// AbortWithError writes an error envelope and stops the handler chain.
func AbortWithError(c *gin.Context, code int, message string) {
	RespondError(c, code, message)
	c.Abort()
}

func respondDetailed(c *gin.Context, code int, message, errorCode string, err error, detail string) {
	resp := APIResponse{
		Status:    "error",
		Code:      code,
		Message:   message,
		ErrorCode: errorCode,
		TraceID:   c.GetString("trace_id"),
	}
	if c.GetBool(ContextKeyExposeDetails) {
		switch {
		case detail != "":
			resp.Details = detail
		case err != nil:
			resp.Details = err.Error()
		}
	}
	c.JSON(code, resp)
}

func HandleServiceError(c *gin.Context, err error) {
	var providerErr *ProviderError

	switch {
	case errors.As(err, &providerErr):
		log.WithError(err).WithFields(log.Fields{
			"trace_id": c.GetString("trace_id"),
			"kind":     providerErr.Kind,
		}).Error("provider call failed")
		respondDetailed(c, providerErr.StatusCode(), providerErr.Message, string(providerErr.Kind), err, providerErr.Detail)
	case errors.Is(err, ErrUnauthorized):
		respondDetailed(c, http.StatusUnauthorized, "Unauthorized", "", nil, "")
	case errors.Is(err, ErrQuotaExceeded):
		respondDetailed(c, http.StatusForbidden,
			"You have reached your monthly generation limit. Please upgrade your plan to continue.",
			"LIMIT_EXCEEDED", nil, "")
	case errors.Is(err, ErrInvalidPage):
		respondDetailed(c, http.StatusBadRequest, "Page must be greater than 0", "", nil, "")
	case errors.Is(err, ErrInvalidPageSize):
		respondDetailed(c, http.StatusBadRequest, "Page size must be between 1 and 100", "", nil, "")
	case errors.Is(err, ErrMissingUploadedImage):
		respondDetailed(c, http.StatusBadRequest, "Invalid input: 'uploadedImage' is required and must be a string", "", nil, "")
	case errors.Is(err, ErrMissingImageURL):
		respondDetailed(c, http.StatusBadRequest, "image_url is required", "", nil, "")
	case errors.Is(err, ErrMissingGenerationID):
		respondDetailed(c, http.StatusBadRequest, "generationId is required", "", nil, "")
	case errors.Is(err, ErrGenerationNotFound):
		respondDetailed(c, http.StatusNotFound, "Generation not found", "", nil, "")
	case errors.Is(err, ErrInvalidDataURI):
		respondDetailed(c, http.StatusBadRequest, "Invalid file format: must be a base64 data URI", "", err, "")
	case errors.Is(err, ErrUnsupportedFileType):
		respondDetailed(c, http.StatusBadRequest, "Unsupported file type: use JPEG or PNG", "", err, "")
	case errors.Is(err, ErrFileTooLarge):
		respondDetailed(c, http.StatusBadRequest, "File is larger than 10MB", "", err, "")
	case errors.Is(err, ErrUploadFailed):
		log.WithError(err).WithField("trace_id", c.GetString("trace_id")).Error("upload failed")
		respondDetailed(c, http.StatusInternalServerError, "Upload failed", "", err, "")
	case errors.Is(err, ErrUserNotFound):
		respondDetailed(c, http.StatusNotFound, "User not found", "", nil, "")
	case errors.Is(err, ErrInvalidPlan):
		respondDetailed(c, http.StatusBadRequest, "Invalid plan", "", nil, "")
	case errors.Is(err, ErrPlanPriceNotConfigured):
		respondDetailed(c, http.StatusInternalServerError, "Plan price ID not configured", "", nil, "")
	case errors.Is(err, ErrNoActiveSubscription):
		respondDetailed(c, http.StatusBadRequest, "No active subscription", "", nil, "")
	case errors.Is(err, ErrSubscriptionNotFound):
		respondDetailed(c, http.StatusNotFound, "No active subscription found", "", nil, "")
	case errors.Is(err, ErrSubscriptionNotCanceled):
		respondDetailed(c, http.StatusBadRequest, "Subscription is not scheduled for cancellation", "", nil, "")
	case errors.Is(err, ErrNoBillingCustomer):
		respondDetailed(c, http.StatusBadRequest, "Billing customer missing for user", "", nil, "")
	case errors.Is(err, ErrInvalidWebhook):
		respondDetailed(c, http.StatusBadRequest, "Invalid webhook payload", "", err, "")
	case errors.Is(err, ErrProviderNotConfigured):
		log.WithError(err).Error("provider not configured")
		respondDetailed(c, http.StatusInternalServerError, "Server configuration error", "", err, "")
	case errors.Is(err, ErrDatabaseError):
		log.WithError(err).WithField("trace_id", c.GetString("trace_id")).Error("database error")
		respondDetailed(c, http.StatusInternalServerError, "Internal server error", "", err, "")
	default:
		log.WithError(err).WithField("trace_id", c.GetString("trace_id")).Error("unhandled service error")
		respondDetailed(c, http.StatusInternalServerError, "Internal server error", "", err, "")
	}
}
