package db_fx

import (
	"context"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"herotime/internal/config"
	"herotime/internal/infra"
	"herotime/internal/repositories"
)

var Module = fx.Provide(
	provideDB, provideUserRepo, provideGenerationRepo)

func provideDB(lc fx.Lifecycle, cfg *config.Config) (*gorm.DB, error) {
	db, err := infra.OpenDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			infra.CloseDatabase(db)
			return nil
		},
	})
	return db, nil
}

func provideUserRepo(db *gorm.DB) repositories.UserRepository {
	return repositories.NewUserRepository(db)
}

func provideGenerationRepo(db *gorm.DB) repositories.GenerationRepository {
	return repositories.NewGenerationRepository(db)
}
