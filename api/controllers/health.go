package controllers

import (
	"context"
	"net/http"

	"github.com/arkanlabs/shopgate/api/responses"
	"github.com/arkanlabs/shopgate/pkg/config"
	pkgerrors "github.com/arkanlabs/shopgate/pkg/errors"
	"github.com/arkanlabs/shopgate/pkg/logger"
)

// Pinger reports whether a dependency answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Shopgate-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks the gateway's own dependencies. The four upstream
// services are deliberately not probed here; their failures surface per
// request as classified errors.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Shopgate-Env", cfg.App.Env)

		failing := map[string]string{}
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				failing[name] = err.Error()
			}
		}

		if len(failing) > 0 {
			err := pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").
				WithDetails(failing)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
