package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"herotime/internal/models/request_models"
	"herotime/internal/models/response_models"
	"herotime/internal/services"
	"herotime/pkg/middleware"
	"herotime/pkg/utils"
)

const (
	maxWebhookBytes       = 64 * 1024
	stripeSignatureHeader = "Stripe-Signature"
)

type SubscriptionController struct {
	subscriptionService services.SubscriptionService
}

func NewSubscriptionController(subscriptionService services.SubscriptionService) *SubscriptionController {
	return &SubscriptionController{
		subscriptionService: subscriptionService,
	}
}

// GetSubscription godoc
// @Summary Current plan, usage and billing state
// @Tags Subscriptions
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/subscription [get]
func (s *SubscriptionController) GetSubscription(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	sub, err := s.subscriptionService.GetSubscription(c.Request.Context(), userID)
	if errors.Is(err, utils.ErrUserNotFound) {
		// first visit: the row is created by a sync
		sub, err = s.subscriptionService.Sync(c.Request.Context(), userID, c.GetString(middleware.ContextKeyUserEmail))
	}
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, sub, "Subscription retrieved successfully")
}

// CreateCheckoutSession godoc
// @Summary Subscribe to or change a paid plan
// @Description Returns a checkout URL for new subscribers, or a settings URL after an in-place plan change
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param request body request_models.CheckoutSessionRequest true "Target plan"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /api/stripe/create-checkout-session [post]
func (s *SubscriptionController) CreateCheckoutSession(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req request_models.CheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid plan")
		return
	}

	url, err := s.subscriptionService.ChangePlan(c.Request.Context(), userID,
		c.GetString(middleware.ContextKeyUserEmail), req.Plan, requestOrigin(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, response_models.SessionURLResponse{URL: url}, "Checkout session created successfully")
}

func (s *SubscriptionController) CancelSubscription(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	resp, err := s.subscriptionService.CancelAtPeriodEnd(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, resp, "Subscription will be canceled at the end of the billing period")
}

func (s *SubscriptionController) ReactivateSubscription(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	resp, err := s.subscriptionService.Reactivate(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, resp, "Subscription reactivated successfully")
}

func (s *SubscriptionController) SyncSubscription(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	sub, err := s.subscriptionService.Sync(c.Request.Context(), userID, c.GetString(middleware.ContextKeyUserEmail))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, gin.H{"subscription": sub}, "Subscription synced successfully")
}

func (s *SubscriptionController) CreatePortalSession(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	url, err := s.subscriptionService.CreatePortalSession(c.Request.Context(), userID, requestOrigin(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, response_models.SessionURLResponse{URL: url}, "Portal session created successfully")
}

// HandleWebhook verifies and applies a billing provider event. The body must stay
// byte-for-byte intact for the signature check.
func (s *SubscriptionController) HandleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes+1))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Unable to read request body")
		return
	}
	if len(payload) > maxWebhookBytes {
		utils.RespondError(c, http.StatusRequestEntityTooLarge, "Webhook payload too large")
		return
	}

	if err := s.subscriptionService.HandleWebhook(c.Request.Context(), payload, c.GetHeader(stripeSignatureHeader)); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, gin.H{"received": true}, "")
}
