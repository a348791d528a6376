package inference_fx

import (
	"go.uber.org/fx"

	"herotime/internal/config"
	"herotime/pkg/inference"
)

var Module = fx.Provide(provideInferenceClient)

func provideInferenceClient(cfg *config.Config) (inference.Client, error) {
	return inference.NewReplicateClient(cfg.Replicate)
}
