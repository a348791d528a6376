package subscription_fx

import (
	"go.uber.org/fx"

	"herotime/internal/config"
	"herotime/internal/repositories"
	"herotime/internal/services"
	"herotime/pkg/billing"
	mem "herotime/pkg/memcache"
)

var Module = fx.Provide(
	providePlanService, provideSubscriptionService)

func providePlanService(cfg *config.Config) services.PlanServiceInterface {
	return services.NewPlanService(cfg)
}

func provideSubscriptionService(
	users repositories.UserRepository,
	billingClient billing.Client,
	plans services.PlanServiceInterface,
	locks *mem.UserLocks,
	cfg *config.Config,
) services.SubscriptionService {
	return services.NewSubscriptionService(users, billingClient, plans, locks, cfg)
}
