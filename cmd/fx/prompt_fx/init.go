// cmd/fx/prompt_fx/init.go
package prompt_fx

import (
	"go.uber.org/fx"

	"herotime/internal/services"
)

var Module = fx.Provide(ProvidePromptService)

// ProvidePromptService serves the static prompt presets and the default hero prompt.
func ProvidePromptService() services.PromptServiceInterface {
	return services.NewPromptService()
}
