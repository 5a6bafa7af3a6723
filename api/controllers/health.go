package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/schoolbridge/schoolbridge-backend/api/responses"
	"github.com/schoolbridge/schoolbridge-backend/pkg/config"
	"github.com/schoolbridge/schoolbridge-backend/pkg/db"
	pkgerrors "github.com/schoolbridge/schoolbridge-backend/pkg/errors"
	"github.com/schoolbridge/schoolbridge-backend/pkg/logger"
	"github.com/schoolbridge/schoolbridge-backend/pkg/redis"
	"github.com/schoolbridge/schoolbridge-backend/pkg/storage/gcs"
)

const readinessTimeout = 5 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SchoolBridge-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the API's hard dependencies. Any failing check flips the
// response to 503 so the platform stops routing traffic here.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger, gcsP gcs.Pinger) http.HandlerFunc {
	type check struct {
		name   string
		pinger interface {
			Ping(ctx context.Context) error
		}
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SchoolBridge-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := []check{}
		if dbP != nil {
			checks = append(checks, check{name: "postgres", pinger: dbP})
		}
		if redisP != nil {
			checks = append(checks, check{name: "redis", pinger: redisP})
		}
		if gcsP != nil {
			checks = append(checks, check{name: "gcs", pinger: gcsP})
		}

		status := map[string]string{}
		for _, c := range checks {
			if err := c.pinger.Ping(ctx); err != nil {
				status[c.name] = "down"
				if logg != nil {
					logg.Error(ctx, c.name+" readiness check failed", err)
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, c.name+" unavailable"))
				return
			}
			status[c.name] = "up"
		}
		status["status"] = "ready"
		responses.WriteSuccess(w, status)
	}
}
