package utils

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidPage     = errors.New("invalid page parameter")
	ErrInvalidPageSize = errors.New("invalid page size parameter")
	ErrDatabaseError   = errors.New("database error")

	ErrMissingUploadedImage = errors.New("uploaded image is required")
	ErrMissingImageURL      = errors.New("image_url is required")
	ErrMissingGenerationID  = errors.New("generation id is required")
	ErrGenerationNotFound   = errors.New("generation not found")
	ErrQuotaExceeded        = errors.New("generation limit exceeded")

	ErrInvalidDataURI      = errors.New("invalid data uri")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrUploadFailed        = errors.New("upload failed")

	ErrUserNotFound            = errors.New("user not found")
	ErrInvalidPlan             = errors.New("invalid plan")
	ErrPlanPriceNotConfigured  = errors.New("plan price id not configured")
	ErrNoActiveSubscription    = errors.New("no active subscription")
	ErrSubscriptionNotFound    = errors.New("no active subscription found")
	ErrSubscriptionNotCanceled = errors.New("subscription is not scheduled for cancellation")
	ErrNoBillingCustomer       = errors.New("billing customer missing for user")
	ErrInvalidWebhook          = errors.New("invalid webhook payload")
	ErrProviderNotConfigured   = errors.New("provider not configured")
)

type ProviderErrorKind string

const (
	ProviderBadRequest      ProviderErrorKind = "bad_request"
	ProviderUnauthorized    ProviderErrorKind = "unauthorized"
	ProviderPaymentRequired ProviderErrorKind = "payment_required"
	ProviderRateLimited     ProviderErrorKind = "rate_limited"
	ProviderTimeout         ProviderErrorKind = "timeout"
	ProviderNetwork         ProviderErrorKind = "network"
	ProviderGeneric         ProviderErrorKind = "generic"
)

// ProviderError is a failure of an external provider call, classified for the HTTP layer.
type ProviderError struct {
	Kind    ProviderErrorKind
	Message string
	Detail  string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func (e *ProviderError) StatusCode() int {
	switch e.Kind {
	case ProviderBadRequest:
		return http.StatusBadRequest
	case ProviderUnauthorized:
		return http.StatusUnauthorized
	case ProviderPaymentRequired:
		return http.StatusPaymentRequired
	case ProviderRateLimited:
		return http.StatusTooManyRequests
	case ProviderTimeout:
		return http.StatusRequestTimeout
	case ProviderNetwork:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
