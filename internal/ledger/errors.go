package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// Executor error taxonomy. Callers branch on these with errors.Is; the
// wrapped detail stays server-side.
var (
	// ErrConnectionFailed covers network and authentication failures opening
	// the tenant database.
	ErrConnectionFailed = errors.New("ledger: connection failed")
	// ErrQueryTimeout marks statements that exceeded the configured bound.
	// Reported distinctly so callers can widen the window or narrow the
	// requested date range.
	ErrQueryTimeout = errors.New("ledger: query timeout")
	// ErrQuerySyntax marks malformed generated SQL, a server bug. The full
	// statement is logged server-side; callers see a generic message.
	ErrQuerySyntax = errors.New("ledger: query syntax")
)

// classifyQueryError sorts an execution failure into the taxonomy. Timeout
// checks run first: a cancelled context surfaces through driver errors in
// engine-specific shapes.
func classifyQueryError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return errTagged(ErrQueryTimeout, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 42: syntax error or access rule violation.
		if len(pgErr.Code) >= 2 && pgErr.Code[:2] == "42" {
			return errTagged(ErrQuerySyntax, err)
		}
		return errTagged(ErrConnectionFailed, err)
	}
	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) {
		if sqErr.Code == sqlite3.ErrError {
			return errTagged(ErrQuerySyntax, err)
		}
		return errTagged(ErrConnectionFailed, err)
	}
	return errTagged(ErrConnectionFailed, err)
}

// taggedError pairs a sentinel with the underlying driver error so both
// errors.Is on the sentinel and the full detail survive.
type taggedError struct {
	tag   error
	cause error
}

func errTagged(tag, cause error) error {
	return taggedError{tag: tag, cause: cause}
}

func (e taggedError) Error() string { return e.tag.Error() + ": " + e.cause.Error() }

func (e taggedError) Is(target error) bool { return errors.Is(e.tag, target) }

func (e taggedError) Unwrap() error { return e.cause }
