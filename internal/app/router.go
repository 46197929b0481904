package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gymstack/gymstack/internal/authz"
	"github.com/gymstack/gymstack/internal/observability"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger       *slog.Logger
	Config       *Config
	AuthzHandler *authz.Handler
	Metrics      *observability.Metrics
}

// NewRouter constructs the chi.Router. Gym resource controllers are mounted by
// the surrounding system; this service exposes health, metrics and the
// authorization engine's own surface.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())

	r.Route("/authz", func(r chi.Router) {
		params.AuthzHandler.MountRoutes(r)
	})

	return r
}
