package reports

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Account codes use four dash-separated numeric groups of fixed widths
// 1-2-2-4 (for example 1-01-01-0001). Stripping the dashes yields a 9-digit
// numeric key used for all hierarchy and range arithmetic.
const (
	codeDigits = 9
	// MaxKey is the largest representable numeric key, used as the default
	// upper range bound.
	MaxKey uint64 = 999_999_999
)

// ErrMalformedAccountCode marks codes that do not parse to the 1-2-2-4 shape.
// Rows carrying such codes are skipped and counted, never fatal.
var ErrMalformedAccountCode = errors.New("reports: malformed account code")

// ParseCode converts a dash-grouped account code to its numeric key. The
// dashed wire format and the bare 9-digit form are both accepted. A key of
// zero is rejected so it can never reach the classifier, where it would
// satisfy the coarsest tier predicate.
func ParseCode(code string) (uint64, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty", ErrMalformedAccountCode)
	}
	stripped := strings.ReplaceAll(trimmed, "-", "")
	if len(stripped) != codeDigits {
		return 0, fmt.Errorf("%w: %q", ErrMalformedAccountCode, code)
	}
	key, err := strconv.ParseUint(stripped, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedAccountCode, code)
	}
	if key == 0 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedAccountCode, code)
	}
	if dashed := strings.Count(trimmed, "-"); dashed != 0 {
		if !validGrouping(trimmed) {
			return 0, fmt.Errorf("%w: %q", ErrMalformedAccountCode, code)
		}
	}
	return key, nil
}

func validGrouping(code string) bool {
	parts := strings.Split(code, "-")
	if len(parts) != 4 {
		return false
	}
	widths := [4]int{1, 2, 2, 4}
	for i, part := range parts {
		if len(part) != widths[i] {
			return false
		}
	}
	return true
}

// FormatKey renders a numeric key back to the canonical dash-grouped form.
func FormatKey(key uint64) string {
	class := key / topLevelSpan
	major := key / majorGroupSpan % 100
	sub := key / subGroupSpan % 100
	detail := key % subGroupSpan
	return fmt.Sprintf("%d-%02d-%02d-%04d", class, major, sub, detail)
}
