package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ledgerview/ledgerview/internal/observability"
	"github.com/ledgerview/ledgerview/internal/reports"
	"github.com/ledgerview/ledgerview/internal/tenants"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	ReportsHandler *reports.Handler
	TenantAuth     tenants.Authenticator
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with service defaults. Every report
// route sits behind the tenant auth middleware; health and metrics do not.
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

	if params.ReportsHandler != nil && params.TenantAuth != nil {
		r.Route("/reports", func(r chi.Router) {
			r.Use(tenants.Middleware(params.TenantAuth, params.Logger))
			params.ReportsHandler.MountRoutes(r)
		})
	}

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
