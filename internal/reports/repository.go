package reports

import (
	"context"
	"errors"
	"time"

	"github.com/ledgerview/ledgerview/internal/ledger"
)

// Tenant ledger SQL. Statements are parameterized with $N ordinals and
// rebound per engine by the executor; caller-supplied dates and account
// ranges only ever travel as bind arguments.
const (
	sqlPostingBounds = `
		SELECT MIN(posting_date) AS first_date, MAX(posting_date) AS last_date
		FROM ledger_postings`

	sqlPeriodSums = `
		SELECT account_code, account_name,
			SUM(debit_amount) AS total_debit,
			SUM(credit_amount) AS total_credit
		FROM ledger_postings
		WHERE posting_date >= $1 AND posting_date <= $2
		GROUP BY account_code, account_name
		ORDER BY account_code`

	sqlChartAccounts = `
		SELECT account_code, account_name
		FROM chart_of_accounts
		ORDER BY account_code`
)

// QueryExecutor is the dynamic executor contract the repository needs.
type QueryExecutor interface {
	Query(ctx context.Context, profile ledger.ConnectionProfile, q ledger.Query) ([]ledger.Row, error)
}

// Repository reads period aggregates out of a tenant ledger database.
type Repository struct {
	exec QueryExecutor
}

// NewRepository constructs a repository over the dynamic executor.
func NewRepository(exec QueryExecutor) *Repository {
	return &Repository{exec: exec}
}

// PostingBounds returns the earliest and latest posting dates in the tenant
// ledger. ok is false for an empty ledger.
func (r *Repository) PostingBounds(ctx context.Context, profile ledger.ConnectionProfile) (earliest, latest time.Time, ok bool, err error) {
	rows, err := r.exec.Query(ctx, profile, ledger.Query{SQL: sqlPostingBounds})
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	if len(rows) == 0 {
		return time.Time{}, time.Time{}, false, nil
	}
	earliest, okFirst := rows[0].Time("first_date")
	latest, okLast := rows[0].Time("last_date")
	return earliest, latest, okFirst && okLast, nil
}

// PeriodSums fetches per-account debit/credit totals for the period and
// parses them into leaf balances. Rows with malformed account codes are
// skipped and counted, never fatal to the whole report.
func (r *Repository) PeriodSums(ctx context.Context, profile ledger.ConnectionProfile, from, to time.Time) ([]AccountBalance, int, error) {
	rows, err := r.exec.Query(ctx, profile, ledger.Query{
		SQL:  sqlPeriodSums,
		Args: []any{from.Format(dateLayout), to.Format(dateLayout)},
	})
	if err != nil {
		return nil, 0, err
	}

	balances := make([]AccountBalance, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		code := row.String("account_code")
		key, err := ParseCode(code)
		if err != nil {
			if errors.Is(err, ErrMalformedAccountCode) {
				skipped++
				continue
			}
			return nil, skipped, err
		}
		balances = append(balances, AccountBalance{
			Code:   code,
			Key:    key,
			Name:   row.String("account_name"),
			Debit:  row.Decimal("total_debit"),
			Credit: row.Decimal("total_credit"),
		})
	}
	return balances, skipped, nil
}

// ChartAccounts lists the tenant's full chart of accounts with zero sums.
// Group accounts rarely carry postings of their own; the chart supplies them
// so the aggregator has rows to roll leaf sums into.
func (r *Repository) ChartAccounts(ctx context.Context, profile ledger.ConnectionProfile) ([]AccountBalance, int, error) {
	rows, err := r.exec.Query(ctx, profile, ledger.Query{SQL: sqlChartAccounts})
	if err != nil {
		return nil, 0, err
	}
	balances := make([]AccountBalance, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		code := row.String("account_code")
		key, err := ParseCode(code)
		if err != nil {
			if errors.Is(err, ErrMalformedAccountCode) {
				skipped++
				continue
			}
			return nil, skipped, err
		}
		balances = append(balances, AccountBalance{
			Code: code,
			Key:  key,
			Name: row.String("account_name"),
		})
	}
	return balances, skipped, nil
}
