package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/diatonic-ai/workbench/internal/auth"
	"github.com/diatonic-ai/workbench/internal/catalog"
	"github.com/diatonic-ai/workbench/internal/entitlement"
	"github.com/diatonic-ai/workbench/internal/observability"
	"github.com/diatonic-ai/workbench/internal/quota"
	"github.com/diatonic-ai/workbench/internal/shared"
	"github.com/diatonic-ai/workbench/internal/users"
	"github.com/diatonic-ai/workbench/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	EntitlementHandler *entitlement.Handler
	QuotaHandler       *quota.Handler
	UsersHandler       *users.Handler
	CatalogHandler     *catalog.Handler
	AdminAuth          *auth.AdminToken
	Authz              *entitlement.Middleware
	JobsHandler        *jobs.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with workbench defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/v1/entitlements", params.EntitlementHandler.MountRoutes)
	r.Route("/v1/quota", params.QuotaHandler.MountRoutes)

	r.Route("/v1/catalog", func(r chi.Router) {
		r.Use(params.Authz.RequireAny(shared.PermCoreUsePlatform))
		params.CatalogHandler.MountRoutes(r)
	})

	r.Route("/v1/admin/users", func(r chi.Router) {
		r.Use(params.AdminAuth.Require)
		params.UsersHandler.MountRoutes(r)
	})

	if params.JobsHandler != nil {
		r.Route("/v1/admin/jobs", func(r chi.Router) {
			r.Use(params.AdminAuth.Require)
			params.JobsHandler.MountRoutes(r)
		})
	}

	return r
}
