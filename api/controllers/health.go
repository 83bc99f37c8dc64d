package controllers

import (
	"errors"
	"net/http"

	"github.com/hmartinez-dev/tiendita-backend/api/responses"
	"github.com/hmartinez-dev/tiendita-backend/pkg/config"
	pkgerrors "github.com/hmartinez-dev/tiendita-backend/pkg/errors"
	"github.com/hmartinez-dev/tiendita-backend/pkg/kv"
	"github.com/hmartinez-dev/tiendita-backend/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Tiendita-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady probes the durable backend with a read. A missing key is a
// healthy answer; only a transport failure marks the check not ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, backend kv.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Tiendita-Env", cfg.App.Env)

		if backend == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "storage backend unavailable"))
			return
		}
		if _, err := backend.Get(r.Context(), "healthcheck"); err != nil && !errors.Is(err, kv.ErrNotFound) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storage backend not ready"))
			return
		}
		responses.WriteSuccess(w, map[string]string{
			"status":  "ready",
			"storage": cfg.Storage.Driver,
		})
	}
}
