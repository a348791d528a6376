package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"herotime/internal/api/controllers"
	"herotime/internal/config"
	"herotime/pkg/middleware"
	"herotime/pkg/utils"
)

type Controllers struct {
	Generation   *controllers.GenerationController
	Upload       *controllers.UploadController
	Subscription *controllers.SubscriptionController
	Catalog      *controllers.CatalogController
	Prompt       *controllers.PromptController
}

func ProvideRouter(
	cfg *config.Config,
	verifier utils.TokenVerifier,
	generationController *controllers.GenerationController,
	uploadController *controllers.UploadController,
	subscriptionController *controllers.SubscriptionController,
	catalogController *controllers.CatalogController,
	promptController *controllers.PromptController) *gin.Engine {

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	return NewRouter(cfg, verifier, Controllers{
		Generation:   generationController,
		Upload:       uploadController,
		Subscription: subscriptionController,
		Catalog:      catalogController,
		Prompt:       promptController,
	})
}

func NewRouter(cfg *config.Config, verifier utils.TokenVerifier, ctrl Controllers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.ErrorDetails(!cfg.IsProduction()))
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	RegisterRoutes(r, middleware.JWTAuthMiddleware(verifier), ctrl)
	return r
}

func RegisterRoutes(r *gin.Engine, auth gin.HandlerFunc, ctrl Controllers) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// public
	api.GET("/props", ctrl.Catalog.ListProps)
	api.GET("/templates", ctrl.Catalog.ListTemplates)
	api.GET("/plans", ctrl.Catalog.ListPlans)
	api.GET("/prompt-templates", ctrl.Prompt.ListPromptTemplates)
	api.POST("/stripe/webhook", ctrl.Subscription.HandleWebhook)

	protected := api.Group("")
	protected.Use(auth)

	protected.POST("/generate-image", ctrl.Generation.GenerateImage)
	protected.POST("/upload-image", ctrl.Upload.UploadImage)
	protected.GET("/generations", ctrl.Generation.ListGenerations)
	protected.POST("/generations", ctrl.Generation.CreateGeneration)
	protected.DELETE("/generations", ctrl.Generation.DeleteGeneration)
	protected.POST("/delete-generation", ctrl.Generation.DeleteGenerationWithAssets)

	protected.GET("/subscription", ctrl.Subscription.GetSubscription)

	stripeGroup := protected.Group("/stripe")
	stripeGroup.POST("/create-checkout-session", ctrl.Subscription.CreateCheckoutSession)
	stripeGroup.POST("/cancel-subscription", ctrl.Subscription.CancelSubscription)
	stripeGroup.POST("/reactivate-subscription", ctrl.Subscription.ReactivateSubscription)
	stripeGroup.POST("/sync-subscription", ctrl.Subscription.SyncSubscription)
	stripeGroup.POST("/create-portal-session", ctrl.Subscription.CreatePortalSession)
}
