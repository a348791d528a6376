package storage_fx

import (
	"context"

	"go.uber.org/fx"

	"herotime/internal/config"
	"herotime/pkg/storage"
)

var Module = fx.Provide(provideStorage)

func provideStorage(cfg *config.Config) (storage.Storage, error) {
	return storage.NewS3Storage(context.Background(), cfg.Storage, cfg.Supabase.URL)
}
