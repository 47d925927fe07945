package tenants

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerview/ledgerview/internal/ledger"
)

// Repository provides PostgreSQL backed access to the tenant registry.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const tenantColumns = `id, slug, name, api_key_hash, engine_kind, db_host, db_port,
	db_name, db_user, db_credential, query_timeout_seconds, reachable,
	last_connected_at, created_at, updated_at`

// GetBySlug loads one tenant with its connection profile.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE slug = $1`
	row := r.pool.QueryRow(ctx, query, slug)
	tenant, err := scanTenant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotConfigured
		}
		return nil, fmt.Errorf("tenants: get %q: %w", slug, err)
	}
	return tenant, nil
}

// List returns every registered tenant, ordered by slug.
func (r *Repository) List(ctx context.Context) ([]Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants ORDER BY slug`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("tenants: list: %w", err)
	}
	defer rows.Close()

	var out []Tenant
	for rows.Next() {
		tenant, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("tenants: list scan: %w", err)
		}
		out = append(out, *tenant)
	}
	return out, rows.Err()
}

// TouchLastConnected records a successful connection to the tenant database.
// Purely observational; failures are the caller's to ignore.
func (r *Repository) TouchLastConnected(ctx context.Context, id int64, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE tenants SET last_connected_at = $2, reachable = TRUE, updated_at = NOW() WHERE id = $1`,
		id, at)
	return err
}

// SetReachable stores the outcome of a connectivity probe.
func (r *Repository) SetReachable(ctx context.Context, id int64, reachable bool, at time.Time) error {
	if reachable {
		return r.TouchLastConnected(ctx, id, at)
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE tenants SET reachable = FALSE, updated_at = NOW() WHERE id = $1`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTenant(row rowScanner) (*Tenant, error) {
	var (
		t              Tenant
		engine         string
		timeoutSeconds int
		lastConnected  pgtype.Timestamptz
	)
	err := row.Scan(
		&t.ID, &t.Slug, &t.Name, &t.APIKeyHash,
		&engine, &t.Profile.Host, &t.Profile.Port,
		&t.Profile.DatabaseName, &t.Profile.User, &t.Profile.Credential,
		&timeoutSeconds, &t.Reachable,
		&lastConnected, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Profile.Engine = ledger.EngineKind(engine)
	t.Profile.Timeout = time.Duration(timeoutSeconds) * time.Second
	if lastConnected.Valid {
		at := lastConnected.Time
		t.LastConnectedAt = &at
	}
	return &t, nil
}
