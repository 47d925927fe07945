package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Row is one result record from a tenant database. Result schemas are not
// known at compile time, so values are kept generic with the column order
// preserved. Lookups are case-insensitive: the two engines disagree on
// result column casing.
type Row struct {
	cols  []string
	index map[string]int
	vals  []any
}

// NewRow builds a row from parallel column and value slices.
func NewRow(cols []string, vals []any) Row {
	index := make(map[string]int, len(cols))
	for i, col := range cols {
		index[strings.ToLower(col)] = i
	}
	return Row{cols: cols, index: index, vals: vals}
}

// Columns returns the column names in result order.
func (r Row) Columns() []string {
	out := make([]string, len(r.cols))
	copy(out, r.cols)
	return out
}

// Value looks a column up by name, case-insensitively.
func (r Row) Value(name string) (any, bool) {
	i, ok := r.index[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return r.vals[i], true
}

// String reads a column as text. Missing or NULL columns yield "".
func (r Row) String(name string) string {
	v, ok := r.Value(name)
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	default:
		return fmt.Sprint(val)
	}
}

// Decimal reads a column as an exact decimal amount. Missing, NULL, or
// unparseable values yield zero: sum columns over an empty window come back
// NULL from both engines.
func (r Row) Decimal(name string) decimal.Decimal {
	v, ok := r.Value(name)
	if !ok || v == nil {
		return decimal.Zero
	}
	switch val := v.(type) {
	case int64:
		return decimal.NewFromInt(val)
	case float64:
		return decimal.NewFromFloat(val)
	case string:
		d, err := decimal.NewFromString(val)
		if err != nil {
			return decimal.Zero
		}
		return d
	case []byte:
		d, err := decimal.NewFromString(string(val))
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

// Time reads a column as a timestamp. SQLite hands dates back as text.
func (r Row) Time(name string) (time.Time, bool) {
	v, ok := r.Value(name)
	if !ok || v == nil {
		return time.Time{}, false
	}
	switch val := v.(type) {
	case time.Time:
		return val, true
	case string:
		return parseTime(val)
	case []byte:
		return parseTime(string(val))
	default:
		return time.Time{}, false
	}
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
