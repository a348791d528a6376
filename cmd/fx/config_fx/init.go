package config_fx

import (
	"go.uber.org/fx"

	"herotime/internal/config"
	"herotime/internal/infra"
)

var Module = fx.Options(
	fx.Provide(config.Load),
	fx.Invoke(infra.InitLogger),
)
