package catalog_fx

import (
	"go.uber.org/fx"

	"herotime/internal/services"
	"herotime/pkg/storage"
)

var Module = fx.Provide(provideCatalogService)

func provideCatalogService(store storage.Storage) services.CatalogService {
	return services.NewCatalogService(store)
}
