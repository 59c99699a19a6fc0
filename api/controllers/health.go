package controllers

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/devicemove-backend/api/responses"
	"github.com/angelmondragon/devicemove-backend/pkg/config"
	"github.com/angelmondragon/devicemove-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/devicemove-backend/pkg/errors"
	"github.com/angelmondragon/devicemove-backend/pkg/logger"
	"github.com/angelmondragon/devicemove-backend/pkg/redis"
)

const readyTimeout = 2 * time.Second

const envHeader = "X-DeviceMove-Env"

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the database and, when configured, Redis.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		g, gctx := errgroup.WithContext(ctx)
		if dbP != nil {
			g.Go(func() error {
				if err := dbP.Ping(gctx); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "database not ready")
				}
				return nil
			})
		}
		if redisP != nil {
			g.Go(func() error {
				if err := redisP.Ping(gctx); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "redis not ready")
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
