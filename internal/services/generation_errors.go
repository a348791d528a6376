package services

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"herotime/pkg/inference"
	"herotime/pkg/utils"
)

// classifyGenerationError maps a critical-path failure to what the HTTP layer reports.
// Sentinel errors pass through untouched.
func classifyGenerationError(err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{
		utils.ErrDatabaseError,
		utils.ErrProviderNotConfigured,
		utils.ErrQuotaExceeded,
		utils.ErrMissingUploadedImage,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}

	var statusErr *inference.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.Status {
		case http.StatusBadRequest:
			msg := statusErr.Title
			if msg == "" {
				msg = "Invalid request parameters"
			}
			return &utils.ProviderError{Kind: utils.ProviderBadRequest, Message: msg, Detail: statusErr.Detail, Err: err}
		case http.StatusUnauthorized:
			return &utils.ProviderError{Kind: utils.ProviderUnauthorized,
				Message: "Invalid API token. Please check the REPLICATE_API_KEY configuration", Err: err}
		case http.StatusPaymentRequired:
			return &utils.ProviderError{Kind: utils.ProviderPaymentRequired,
				Message: "The inference account needs to be topped up with credits", Err: err}
		case http.StatusTooManyRequests:
			return &utils.ProviderError{Kind: utils.ProviderRateLimited,
				Message: "Too many requests. Please try again later.", Err: err}
		}
	}

	msg := strings.ToLower(err.Error())
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded) || strings.Contains(msg, "timeout"):
		return &utils.ProviderError{Kind: utils.ProviderTimeout,
			Message: "Request timeout - image generation is taking longer than expected", Err: err}
	case errors.As(err, &netErr) || strings.Contains(msg, "network"):
		return &utils.ProviderError{Kind: utils.ProviderNetwork,
			Message: "Network error - please check your internet connection", Err: err}
	case strings.Contains(msg, "insufficient"):
		return &utils.ProviderError{Kind: utils.ProviderPaymentRequired,
			Message: "Insufficient credits in the inference account", Err: err}
	default:
		return &utils.ProviderError{Kind: utils.ProviderGeneric, Message: "Failed to generate image", Err: err}
	}
}
