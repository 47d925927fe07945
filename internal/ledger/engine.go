// Package ledger opens and queries per-tenant external ledger databases. The
// engine behind a connection is decided at request time from the tenant's
// ConnectionProfile, never at compile time: the same process serves tenants
// on embedded file databases and on networked servers.
package ledger

import (
	"fmt"
	"net/url"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// EngineKind selects the driver used for a tenant database.
type EngineKind string

const (
	// EngineEmbedded is a file-based database reached through the host
	// filesystem (SQLite).
	EngineEmbedded EngineKind = "embedded-file"
	// EngineServer is a networked database server (PostgreSQL).
	EngineServer EngineKind = "networked-server"
)

// ConnectionProfile locates one tenant's ledger database. It is supplied by
// the tenant registry and treated read-only here. Credential must never
// appear in logs or error messages; use Redacted for anything user-facing.
type ConnectionProfile struct {
	Engine       EngineKind
	Host         string
	Port         int
	DatabaseName string
	User         string
	Credential   string
	Timeout      time.Duration
}

// Redacted returns a loggable description of the profile.
func (p ConnectionProfile) Redacted() string {
	switch p.Engine {
	case EngineEmbedded:
		return fmt.Sprintf("%s:%s", p.Engine, p.DatabaseName)
	default:
		return fmt.Sprintf("%s:%s:%d/%s", p.Engine, p.Host, p.Port, p.DatabaseName)
	}
}

// driverName maps the engine to its database/sql driver.
func (p ConnectionProfile) driverName() (string, error) {
	switch p.Engine {
	case EngineEmbedded:
		return "sqlite3", nil
	case EngineServer:
		return "pgx", nil
	default:
		return "", fmt.Errorf("ledger: unknown engine %q", p.Engine)
	}
}

// dsn builds the engine-specific connection string.
func (p ConnectionProfile) dsn() (string, error) {
	switch p.Engine {
	case EngineEmbedded:
		// Read-only open: postings are externally produced and immutable.
		return fmt.Sprintf("file:%s?mode=ro&_busy_timeout=%d",
			p.DatabaseName, int(p.timeout().Milliseconds())), nil
	case EngineServer:
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(p.User, p.Credential),
			Host:   fmt.Sprintf("%s:%d", p.Host, p.Port),
			Path:   "/" + p.DatabaseName,
		}
		q := url.Values{}
		q.Set("connect_timeout", fmt.Sprintf("%d", int(p.timeout().Seconds())))
		q.Set("default_query_exec_mode", "cache_statement")
		u.RawQuery = q.Encode()
		return u.String(), nil
	default:
		return "", fmt.Errorf("ledger: unknown engine %q", p.Engine)
	}
}

func (p ConnectionProfile) timeout() time.Duration {
	if p.Timeout > 0 {
		return p.Timeout
	}
	return 15 * time.Second
}
