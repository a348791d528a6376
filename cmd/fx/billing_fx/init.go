package billing_fx

import (
	log "github.com/sirupsen/logrus"
	"go.uber.org/fx"

	"herotime/internal/config"
	"herotime/pkg/billing"
)

var Module = fx.Provide(provideBillingClient)

func provideBillingClient(cfg *config.Config) billing.Client {
	if cfg.Stripe.SecretKey == "" {
		log.Warn("STRIPE_SECRET_KEY is not set, billing routes will fail")
	}
	return billing.NewStripeClient(cfg.Stripe)
}
