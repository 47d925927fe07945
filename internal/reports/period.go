package reports

import (
	"fmt"
	"strings"
	"time"
)

// dateLayout is the ISO date format accepted on the wire.
const dateLayout = "2006-01-02"

// PeriodFilter carries the caller-supplied optional bounds before resolution.
type PeriodFilter struct {
	FromDate    string
	ToDate      string
	FromAccount string
	UptoAccount string
}

// ResolvedPeriod is a PeriodFilter with every bound made concrete.
type ResolvedPeriod struct {
	FromDate time.Time
	ToDate   time.Time
	FromKey  uint64
	UptoKey  uint64
}

// ResolveDates turns the optional date bounds into concrete ones. Absent
// bounds default from the data itself: the earliest and latest posting dates
// seen in the tenant ledger. A ledger with no postings resolves to the zero
// bounds, which the queries treat as an empty window.
func (f PeriodFilter) ResolveDates(earliest, latest time.Time) (time.Time, time.Time, error) {
	from := earliest
	to := latest
	if s := strings.TrimSpace(f.FromDate); s != "" {
		parsed, err := time.Parse(dateLayout, s)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("reports: fromDate %q: %w", s, err)
		}
		from = parsed
	}
	if s := strings.TrimSpace(f.ToDate); s != "" {
		parsed, err := time.Parse(dateLayout, s)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("reports: toDate %q: %w", s, err)
		}
		to = parsed
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("reports: toDate precedes fromDate")
	}
	return from, to, nil
}

// ResolveRange turns the optional account bounds into numeric keys, defaulting
// to the full key space when absent.
func (f PeriodFilter) ResolveRange() (uint64, uint64, error) {
	fromKey := uint64(0)
	uptoKey := MaxKey
	if s := strings.TrimSpace(f.FromAccount); s != "" {
		key, err := ParseCode(s)
		if err != nil {
			return 0, 0, err
		}
		fromKey = key
	}
	if s := strings.TrimSpace(f.UptoAccount); s != "" {
		key, err := ParseCode(s)
		if err != nil {
			return 0, 0, err
		}
		uptoKey = key
	}
	if fromKey > uptoKey {
		return 0, 0, fmt.Errorf("reports: uptoAccount precedes fromAccount")
	}
	return fromKey, uptoKey, nil
}
