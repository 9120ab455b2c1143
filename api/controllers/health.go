package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/elameta/quoteregistry/api/responses"
	"github.com/elameta/quoteregistry/pkg/config"
	pkgerrors "github.com/elameta/quoteregistry/pkg/errors"
	"github.com/elameta/quoteregistry/pkg/logger"
)

const (
	envHeader        = "X-Quoteregistry-Env"
	readinessTimeout = 2 * time.Second
)

// Pinger is any dependency the readiness probe can check.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every named dependency. Nil entries are optional
// dependencies that are not configured and are reported as skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := make(map[string]string, len(deps))
		failed := map[string]string{}
		for name, dep := range deps {
			if dep == nil {
				checks[name] = "skipped"
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				failed[name] = err.Error()
				continue
			}
			checks[name] = "ok"
		}

		if len(failed) > 0 {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependency check failed").WithDetails(failed))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
