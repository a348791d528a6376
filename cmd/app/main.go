package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"go.uber.org/fx"

	"herotime/cmd/fx/auth_fx"
	"herotime/cmd/fx/billing_fx"
	"herotime/cmd/fx/catalog_fx"
	"herotime/cmd/fx/config_fx"
	"herotime/cmd/fx/controllers_fx"
	"herotime/cmd/fx/db_fx"
	"herotime/cmd/fx/generation_fx"
	"herotime/cmd/fx/inference_fx"
	"herotime/cmd/fx/memcache_fx"
	"herotime/cmd/fx/prompt_fx"
	"herotime/cmd/fx/storage_fx"
	"herotime/cmd/fx/subscription_fx"
	"herotime/internal/config"
)

func main() {
	app := fx.New(
		config_fx.Module,
		db_fx.Module,
		memcache_fx.Module,
		storage_fx.Module,
		billing_fx.Module,
		inference_fx.Module,
		auth_fx.Module,
		prompt_fx.Module,
		catalog_fx.Module,
		generation_fx.Module,
		subscription_fx.Module,
		controllers_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, cfg *config.Config, engine *gin.Engine) {
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", server.Addr)
			if err != nil {
				return err
			}
			go func() {
				log.WithField("addr", server.Addr).Info("starting HTTP server")
				if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.WithError(err).Fatal("HTTP server stopped")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("stopping HTTP server")
			return server.Shutdown(ctx)
		},
	})
}
