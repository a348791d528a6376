package auth_fx

import (
	"errors"

	log "github.com/sirupsen/logrus"
	"go.uber.org/fx"

	"herotime/internal/config"
	"herotime/pkg/utils"
)

var Module = fx.Provide(provideTokenVerifier)

// provideTokenVerifier uses the HS256 project secret when one is configured and the
// JWKS endpoint (derived from SUPABASE_URL by default) otherwise.
func provideTokenVerifier(cfg *config.Config) (utils.TokenVerifier, error) {
	switch {
	case cfg.Supabase.JWTSecret != "":
		return utils.NewHMACVerifier(cfg.Supabase.JWTSecret)
	case cfg.Supabase.JWKSURL != "":
		log.WithField("jwks_url", cfg.Supabase.JWKSURL).Info("verifying tokens against JWKS")
		return utils.NewJWKSVerifier(cfg.Supabase.JWKSURL)
	default:
		return nil, errors.New("either SUPABASE_JWKS_URL or SUPABASE_JWT_SECRET must be set")
	}
}
