package reports

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/ledgerview/ledgerview/internal/tenants"
)

// MountRoutes registers the report endpoints onto the router. Export routes
// carry a tighter per-tenant rate limit: a CSV pull runs the full pipeline.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Get("/trial-balance", h.handleTrialBalance)
	r.Get("/cash-book", h.handleCashBook)
	r.Get("/aging", h.handleAging)
	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Get("/trial-balance/export.csv", h.handleTrialBalanceCSV)
		gr.Get("/cash-book/export.csv", h.handleCashBookCSV)
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	if tenant := tenants.FromContext(r.Context()); tenant != nil {
		if slug := strings.TrimSpace(tenant.Slug); slug != "" {
			return "tenant:" + slug, nil
		}
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
