package tenants

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ledgerview/ledgerview/internal/platform/httpx"
)

// Header names carrying caller identity. Identity management proper lives in
// the tenant-management subsystem; this middleware only maps a presented key
// to a registered tenant.
const (
	HeaderTenant = "X-Tenant"
	HeaderAPIKey = "X-Api-Key"
)

// Authenticator resolves a slug/key pair to a tenant.
type Authenticator interface {
	Authenticate(ctx context.Context, slug, apiKey string) (*Tenant, error)
}

// Middleware authenticates report requests and attaches the tenant to the
// request context.
func Middleware(auth Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			slug := strings.TrimSpace(r.Header.Get(HeaderTenant))
			key := strings.TrimSpace(r.Header.Get(HeaderAPIKey))
			if slug == "" || key == "" {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "tenant credentials required")
				return
			}
			tenant, err := auth.Authenticate(r.Context(), slug, key)
			if err != nil {
				switch {
				case errors.Is(err, ErrNotConfigured):
					httpx.Problem(w, http.StatusNotFound, "Tenant Not Configured", "no database registered for tenant")
				case errors.Is(err, ErrInvalidKey):
					httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid api key")
				default:
					if logger != nil {
						logger.Error("tenant auth", slog.String("tenant", slug), slog.Any("error", err))
					}
					httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
				}
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithTenant(r.Context(), tenant)))
		})
	}
}
