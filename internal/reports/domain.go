package reports

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tier identifies one level of the account hierarchy. Levels are inferred
// from the numeric key alone; the chart of accounts carries no parent links.
type Tier int

const (
	TierDetail Tier = iota
	TierSubGroup
	TierMajorGroup
	TierTopLevel
)

// Tier boundary spans. Each coarser boundary is a strict multiple of the
// finer one, so every key lands in exactly one tier.
const (
	subGroupSpan   uint64 = 10_000
	majorGroupSpan uint64 = 1_000_000
	topLevelSpan   uint64 = 100_000_000
)

func (t Tier) String() string {
	switch t {
	case TierSubGroup:
		return "SUB_GROUP"
	case TierMajorGroup:
		return "MAJOR_GROUP"
	case TierTopLevel:
		return "TOP_LEVEL"
	default:
		return "DETAIL"
	}
}

// AccountBalance is the per-request working row: leaf sums coming out of the
// tenant database, group sums filled in by the aggregator. It never outlives
// the request that built it.
type AccountBalance struct {
	Code   string
	Key    uint64
	Name   string
	Tier   Tier
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

// Net returns the account's netted balance as a (debit, credit) pair where at
// most one side is non-zero. A positive debit-minus-credit carries as debit,
// a negative one as credit of the absolute value.
func (a AccountBalance) Net() (debit, credit decimal.Decimal) {
	diff := a.Debit.Sub(a.Credit)
	switch diff.Sign() {
	case 1:
		return diff, decimal.Zero
	case -1:
		return decimal.Zero, diff.Neg()
	default:
		return decimal.Zero, decimal.Zero
	}
}

// ReportKind discriminates the report variants sharing the pipeline.
type ReportKind string

const (
	KindTrialBalance ReportKind = "trial_balance"
	KindCashBook     ReportKind = "cash_book"
	KindAging        ReportKind = "aging"
)

// Row is one emitted report line.
type Row struct {
	Code   string          `json:"code"`
	Name   string          `json:"name,omitempty"`
	Tier   string          `json:"tier"`
	Debit  decimal.Decimal `json:"debit"`
	Credit decimal.Decimal `json:"credit"`
}

// AgingRow is one emitted aging line: the account's netted magnitude split
// across age windows counted back from the report end date.
type AgingRow struct {
	Code      string          `json:"code"`
	Name      string          `json:"name,omitempty"`
	Tier      string          `json:"tier"`
	Current   decimal.Decimal `json:"current"`
	Bucket30  decimal.Decimal `json:"bucket30"`
	Bucket60  decimal.Decimal `json:"bucket60"`
	Bucket90  decimal.Decimal `json:"bucket90"`
	BucketOld decimal.Decimal `json:"bucketOld"`
}

// Report is the assembled result handed back to the transport layer.
type Report struct {
	Rows        []Row
	AgingRows   []AgingRow
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	FromDate    time.Time
	ToDate      time.Time
	Skipped     int
	Elapsed     time.Duration
}
