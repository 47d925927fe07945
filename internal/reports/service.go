package reports

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerview/ledgerview/internal/ledger"
)

// RepositoryPort defines tenant-ledger access for the report pipeline.
type RepositoryPort interface {
	PostingBounds(ctx context.Context, profile ledger.ConnectionProfile) (earliest, latest time.Time, ok bool, err error)
	PeriodSums(ctx context.Context, profile ledger.ConnectionProfile, from, to time.Time) ([]AccountBalance, int, error)
	ChartAccounts(ctx context.Context, profile ledger.ConnectionProfile) ([]AccountBalance, int, error)
}

// TenantRef carries the resolved tenant identity into the pipeline. The
// profile is read-only here.
type TenantRef struct {
	ID      int64
	Slug    string
	Profile ledger.ConnectionProfile
}

// ServiceConfig tunes variant defaults.
type ServiceConfig struct {
	// Cash book account bounds used when the caller supplies none. Defaults
	// cover the 1-01 class of the observed chart convention.
	CashFromAccount string
	CashUptoAccount string
}

// Service runs the full report pipeline: resolve period, pull leaf sums, roll
// up the hierarchy, assemble the response. Every request is independent; the
// only state shared across requests is the optional response cache.
type Service struct {
	repo        RepositoryPort
	cache       *Cache
	logger      *slog.Logger
	cashFrom    uint64
	cashUpto    uint64
	onConnected func(ctx context.Context, tenantID int64)
	now         func() time.Time
}

// NewService wires the pipeline. cache may be nil.
func NewService(repo RepositoryPort, cache *Cache, logger *slog.Logger, cfg ServiceConfig) (*Service, error) {
	if cfg.CashFromAccount == "" {
		cfg.CashFromAccount = "1-01-00-0000"
	}
	if cfg.CashUptoAccount == "" {
		cfg.CashUptoAccount = "1-01-99-9999"
	}
	cashFrom, err := ParseCode(cfg.CashFromAccount)
	if err != nil {
		return nil, fmt.Errorf("reports: cash from bound: %w", err)
	}
	cashUpto, err := ParseCode(cfg.CashUptoAccount)
	if err != nil {
		return nil, fmt.Errorf("reports: cash upto bound: %w", err)
	}
	return &Service{
		repo:     repo,
		cache:    cache,
		logger:   logger,
		cashFrom: cashFrom,
		cashUpto: cashUpto,
		now:      time.Now,
	}, nil
}

// OnConnected registers a hook invoked after a tenant database answered a
// query. Used to stamp the registry's last-connected marker.
func (s *Service) OnConnected(fn func(ctx context.Context, tenantID int64)) {
	s.onConnected = fn
}

// TrialBalance builds the hierarchical trial balance for the period.
func (s *Service) TrialBalance(ctx context.Context, ref TenantRef, filter PeriodFilter) (Report, error) {
	return s.build(ctx, ref, filter, KindTrialBalance)
}

// CashBook builds the trial balance restricted to the cash account range.
func (s *Service) CashBook(ctx context.Context, ref TenantRef, filter PeriodFilter) (Report, error) {
	return s.build(ctx, ref, filter, KindCashBook)
}

// Aging splits each account's netted balance across age windows counted back
// from the period end.
func (s *Service) Aging(ctx context.Context, ref TenantRef, filter PeriodFilter) (Report, error) {
	return s.build(ctx, ref, filter, KindAging)
}

func (s *Service) build(ctx context.Context, ref TenantRef, filter PeriodFilter, kind ReportKind) (Report, error) {
	start := s.now()

	fromKey, uptoKey, err := filter.ResolveRange()
	if err != nil {
		return Report{}, err
	}
	if kind == KindCashBook && filter.FromAccount == "" && filter.UptoAccount == "" {
		fromKey, uptoKey = s.cashFrom, s.cashUpto
	}

	period, empty, err := s.resolvePeriod(ctx, ref, filter)
	if err != nil {
		return Report{}, err
	}
	period.FromKey = fromKey
	period.UptoKey = uptoKey
	if empty {
		// No postings at all and no explicit window: success with zero rows.
		return Report{
			TotalDebit:  decimal.Zero,
			TotalCredit: decimal.Zero,
			Elapsed:     s.now().Sub(start),
		}, nil
	}

	loader := func(ctx context.Context) (interface{}, error) {
		switch kind {
		case KindAging:
			return s.loadAging(ctx, ref, period)
		default:
			return s.loadRolled(ctx, ref, period)
		}
	}

	var report Report
	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return Report{}, err
		}
		report = *(value.(*Report))
	} else {
		key, err := s.cache.BuildKey(ctx, cacheKey(kind, ref.Slug, period)...)
		if err != nil {
			return Report{}, err
		}
		if err := s.cache.FetchJSON(ctx, key, &report, loader); err != nil {
			return Report{}, err
		}
	}

	if s.onConnected != nil {
		s.onConnected(ctx, ref.ID)
	}
	report.FromDate = period.FromDate
	report.ToDate = period.ToDate
	report.Elapsed = s.now().Sub(start)
	return report, nil
}

// resolvePeriod makes the date bounds concrete, reading them off the data
// when the caller left either side open. empty is true when the ledger holds
// no postings and no explicit window was given.
func (s *Service) resolvePeriod(ctx context.Context, ref TenantRef, filter PeriodFilter) (ResolvedPeriod, bool, error) {
	var earliest, latest time.Time
	if filter.FromDate == "" || filter.ToDate == "" {
		first, last, ok, err := s.repo.PostingBounds(ctx, ref.Profile)
		if err != nil {
			return ResolvedPeriod{}, false, err
		}
		if !ok && filter.FromDate == "" && filter.ToDate == "" {
			return ResolvedPeriod{}, true, nil
		}
		earliest, latest = first, last
	}
	from, to, err := filter.ResolveDates(earliest, latest)
	if err != nil {
		return ResolvedPeriod{}, false, err
	}
	if from.IsZero() && to.IsZero() {
		return ResolvedPeriod{}, true, nil
	}
	if from.IsZero() {
		from = to
	}
	if to.IsZero() {
		to = s.now().UTC().Truncate(24 * time.Hour)
	}
	return ResolvedPeriod{FromDate: from, ToDate: to}, false, nil
}

// loadRolled runs the classifier, aggregator, and assembler over the period's
// leaf sums merged with the chart of accounts.
func (s *Service) loadRolled(ctx context.Context, ref TenantRef, period ResolvedPeriod) (*Report, error) {
	balances, skipped, err := s.mergedBalances(ctx, ref, period.FromDate, period.ToDate)
	if err != nil {
		return nil, err
	}
	aggregated := Aggregate(balances)
	rows, totalDebit, totalCredit := Assemble(aggregated, AssembleOptions{
		FromKey: period.FromKey,
		UptoKey: period.UptoKey,
	})
	return &Report{
		Rows:        rows,
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
		Skipped:     skipped,
	}, nil
}

// agingWindow bounds one age bucket, oldest first.
type agingWindow struct {
	from, to time.Time
	assign   func(*AgingRow, decimal.Decimal)
}

// loadAging runs the roll-up once per age window and folds the results into
// per-account bucket rows. Bucket amounts are signed nets: debit balances
// positive, credit balances negative.
func (s *Service) loadAging(ctx context.Context, ref TenantRef, period ResolvedPeriod) (*Report, error) {
	asOf := period.ToDate
	day := 24 * time.Hour
	windows := []agingWindow{
		{period.FromDate, asOf.Add(-120 * day), func(r *AgingRow, v decimal.Decimal) { r.BucketOld = v }},
		{asOf.Add(-119 * day), asOf.Add(-90 * day), func(r *AgingRow, v decimal.Decimal) { r.Bucket90 = v }},
		{asOf.Add(-89 * day), asOf.Add(-60 * day), func(r *AgingRow, v decimal.Decimal) { r.Bucket60 = v }},
		{asOf.Add(-59 * day), asOf.Add(-30 * day), func(r *AgingRow, v decimal.Decimal) { r.Bucket30 = v }},
		{asOf.Add(-29 * day), asOf, func(r *AgingRow, v decimal.Decimal) { r.Current = v }},
	}

	index := make(map[string]*AgingRow)
	var order []string
	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	skipped := 0
	for _, win := range windows {
		if win.to.Before(period.FromDate) {
			continue
		}
		from := win.from
		if from.Before(period.FromDate) {
			from = period.FromDate
		}
		sub := ResolvedPeriod{FromDate: from, ToDate: win.to, FromKey: period.FromKey, UptoKey: period.UptoKey}
		part, err := s.loadRolled(ctx, ref, sub)
		if err != nil {
			return nil, err
		}
		skipped += part.Skipped
		totalDebit = totalDebit.Add(part.TotalDebit)
		totalCredit = totalCredit.Add(part.TotalCredit)
		for _, row := range part.Rows {
			entry, ok := index[row.Code]
			if !ok {
				entry = &AgingRow{Code: row.Code, Name: row.Name, Tier: row.Tier}
				index[row.Code] = entry
				order = append(order, row.Code)
			}
			win.assign(entry, row.Debit.Sub(row.Credit))
		}
	}

	// Canonical codes are fixed width, so lexical order is key order.
	sort.Strings(order)
	rows := make([]AgingRow, 0, len(order))
	for _, code := range order {
		rows = append(rows, *index[code])
	}
	return &Report{
		AgingRows:   rows,
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
		Skipped:     skipped,
	}, nil
}

// mergedBalances unions the chart of accounts with the period's posting sums
// so group accounts exist as rows even without postings of their own.
func (s *Service) mergedBalances(ctx context.Context, ref TenantRef, from, to time.Time) ([]AccountBalance, int, error) {
	chart, chartSkipped, err := s.repo.ChartAccounts(ctx, ref.Profile)
	if err != nil {
		return nil, 0, err
	}
	sums, sumsSkipped, err := s.repo.PeriodSums(ctx, ref.Profile, from, to)
	if err != nil {
		return nil, 0, err
	}

	index := make(map[uint64]int, len(chart))
	balances := make([]AccountBalance, len(chart))
	copy(balances, chart)
	for i := range balances {
		index[balances[i].Key] = i
	}
	for _, sum := range sums {
		if i, ok := index[sum.Key]; ok {
			balances[i].Debit = sum.Debit
			balances[i].Credit = sum.Credit
			continue
		}
		// Postings against an account missing from the chart still count.
		balances = append(balances, sum)
	}
	return balances, chartSkipped + sumsSkipped, nil
}
