package tenants

import (
	"errors"
	"time"

	"github.com/ledgerview/ledgerview/internal/ledger"
)

// ErrNotConfigured means the caller has no ConnectionProfile on record. This
// is a client problem (tenant not set up), distinct from a configured tenant
// whose database cannot be reached.
var ErrNotConfigured = errors.New("tenants: not configured")

// ErrInvalidKey means the presented API key did not match the tenant record.
var ErrInvalidKey = errors.New("tenants: invalid api key")

// Tenant is one business customer and the location of its ledger database.
type Tenant struct {
	ID              int64
	Slug            string
	Name            string
	APIKeyHash      string
	Profile         ledger.ConnectionProfile
	Reachable       bool
	LastConnectedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
