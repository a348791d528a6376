package generation_fx

import (
	"go.uber.org/fx"

	"herotime/internal/repositories"
	"herotime/internal/services"
	"herotime/pkg/inference"
	"herotime/pkg/storage"
)

var Module = fx.Provide(
	provideGenerationService, provideUploadService)

func provideGenerationService(
	generations repositories.GenerationRepository,
	users repositories.UserRepository,
	store storage.Storage,
	predictor inference.Client,
	catalog services.CatalogService,
	prompts services.PromptServiceInterface,
) services.GenerationService {
	return services.NewGenerationService(generations, users, store, predictor, catalog, prompts)
}

func provideUploadService(store storage.Storage) services.UploadService {
	return services.NewUploadService(store)
}
