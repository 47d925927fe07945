package tenants

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// RepositoryPort defines registry access used by the service.
type RepositoryPort interface {
	GetBySlug(ctx context.Context, slug string) (*Tenant, error)
	List(ctx context.Context) ([]Tenant, error)
	TouchLastConnected(ctx context.Context, id int64, at time.Time) error
	SetReachable(ctx context.Context, id int64, reachable bool, at time.Time) error
}

// Service resolves callers to tenants and their connection profiles.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Resolve returns the tenant for a slug, or ErrNotConfigured.
func (s *Service) Resolve(ctx context.Context, slug string) (*Tenant, error) {
	return s.repo.GetBySlug(ctx, slug)
}

// Authenticate resolves a tenant and verifies the presented API key against
// the stored bcrypt hash. Key management itself lives outside this service.
func (s *Service) Authenticate(ctx context.Context, slug, apiKey string) (*Tenant, error) {
	tenant, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(tenant.APIKeyHash), []byte(apiKey)); err != nil {
		return nil, ErrInvalidKey
	}
	return tenant, nil
}

// List returns all registered tenants.
func (s *Service) List(ctx context.Context) ([]Tenant, error) {
	return s.repo.List(ctx)
}

// MarkConnected records that the tenant database answered. Best effort: a
// registry hiccup here must not fail the report that triggered it.
func (s *Service) MarkConnected(ctx context.Context, id int64) {
	if err := s.repo.TouchLastConnected(ctx, id, s.now().UTC()); err != nil && s.logger != nil {
		s.logger.Warn("touch last connected", slog.Int64("tenant", id), slog.Any("error", err))
	}
}

// RecordProbe stores a connectivity probe outcome.
func (s *Service) RecordProbe(ctx context.Context, id int64, reachable bool) error {
	return s.repo.SetReachable(ctx, id, reachable, s.now().UTC())
}
