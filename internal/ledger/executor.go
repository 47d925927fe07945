package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Query is one parameterized statement. SQL is written with $1-style ordinal
// placeholders and rebound per engine; values are always passed as bind
// arguments, never interpolated into the statement text.
type Query struct {
	SQL  string
	Args []any
}

// Executor opens tenant databases described by a ConnectionProfile and runs
// bounded queries against them. Each call opens its own connection: requests
// from different tenants must never share a connection or credential.
type Executor struct {
	logger         *slog.Logger
	defaultTimeout time.Duration
}

// NewExecutor constructs an Executor. timeout bounds statements whose
// profile does not carry its own.
func NewExecutor(logger *slog.Logger, timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Executor{logger: logger, defaultTimeout: timeout}
}

// Query runs one statement against the tenant database and returns the
// result as ordered generic rows. Connection failures, timeouts, and syntax
// errors surface as distinct sentinel errors.
func (e *Executor) Query(ctx context.Context, profile ConnectionProfile, q Query) ([]Row, error) {
	db, err := e.open(ctx, profile)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	timeout := profile.Timeout
	if timeout <= 0 {
		timeout = e.defaultTimeout
	}
	qctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stmt := bindFor(profile.Engine, q.SQL)
	result, err := db.QueryContext(qctx, stmt, q.Args...)
	if err != nil {
		return nil, e.queryError(qctx, profile, stmt, err)
	}
	defer func() { _ = result.Close() }()

	cols, err := result.Columns()
	if err != nil {
		return nil, e.queryError(qctx, profile, stmt, err)
	}

	var rows []Row
	for result.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := result.Scan(ptrs...); err != nil {
			return nil, e.queryError(qctx, profile, stmt, err)
		}
		rows = append(rows, NewRow(cols, vals))
	}
	if err := result.Err(); err != nil {
		return nil, e.queryError(qctx, profile, stmt, err)
	}
	return rows, nil
}

// Ping verifies the tenant database is reachable.
func (e *Executor) Ping(ctx context.Context, profile ConnectionProfile) error {
	db, err := e.open(ctx, profile)
	if err != nil {
		return err
	}
	return db.Close()
}

func (e *Executor) open(ctx context.Context, profile ConnectionProfile) (*sql.DB, error) {
	driver, err := profile.driverName()
	if err != nil {
		return nil, err
	}
	dsn, err := profile.dsn()
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errTagged(ErrConnectionFailed, err)
	}
	// One request, one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pctx, cancel := context.WithTimeout(ctx, profile.timeout())
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		if e.logger != nil {
			e.logger.Warn("tenant database unreachable",
				slog.String("target", profile.Redacted()),
				slog.Any("error", sanitize(err, profile.Credential)))
		}
		return nil, errTagged(ErrConnectionFailed, fmt.Errorf("open %s", profile.Redacted()))
	}
	return db, nil
}

func (e *Executor) queryError(ctx context.Context, profile ConnectionProfile, stmt string, err error) error {
	classified := classifyQueryError(ctx, err)
	if e.logger != nil {
		attrs := []any{
			slog.String("target", profile.Redacted()),
			slog.Any("error", sanitize(err, profile.Credential)),
		}
		if errors.Is(classified, ErrQuerySyntax) {
			// Server bug: keep the full statement in the server log.
			attrs = append(attrs, slog.String("sql", stmt))
		}
		e.logger.Error("tenant query failed", attrs...)
	}
	return classified
}

// sanitize scrubs the credential out of driver error text before logging.
func sanitize(err error, credential string) error {
	if err == nil || credential == "" {
		return err
	}
	msg := strings.ReplaceAll(err.Error(), credential, "*****")
	return fmt.Errorf("%s", msg)
}

// bindFor rewrites $N ordinal placeholders into the engine's native style.
// PostgreSQL takes them as-is; SQLite gets positional '?' markers, relying on
// the convention that ordinals appear in argument order.
func bindFor(kind EngineKind, query string) string {
	if kind != EngineEmbedded {
		return query
	}
	var b strings.Builder
	b.Grow(len(query))
	for i := 0; i < len(query); i++ {
		if query[i] == '$' && i+1 < len(query) && isDigit(query[i+1]) {
			j := i + 1
			for j < len(query) && isDigit(query[j]) {
				j++
			}
			if _, err := strconv.Atoi(query[i+1 : j]); err == nil {
				b.WriteByte('?')
				i = j - 1
				continue
			}
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
