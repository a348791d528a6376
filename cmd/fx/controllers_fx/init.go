package controllers_fx

import (
	"go.uber.org/fx"

	"herotime/internal/api/controllers"
)

var Module = fx.Options(
	fx.Provide(controllers.NewGenerationController),
	fx.Provide(controllers.NewUploadController),
	fx.Provide(controllers.NewSubscriptionController),
	fx.Provide(controllers.NewCatalogController),
	fx.Provide(controllers.NewPromptController))
