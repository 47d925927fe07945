package reports

import (
	"errors"
	"testing"
	"time"
)

func date(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestResolveDates(t *testing.T) {
	earliest := date("2024-01-05")
	latest := date("2024-12-28")

	t.Run("both absent default to ledger bounds", func(t *testing.T) {
		from, to, err := PeriodFilter{}.ResolveDates(earliest, latest)
		if err != nil {
			t.Fatal(err)
		}
		if !from.Equal(earliest) || !to.Equal(latest) {
			t.Fatalf("got %s..%s", from, to)
		}
	})

	t.Run("explicit bounds win", func(t *testing.T) {
		f := PeriodFilter{FromDate: "2024-03-01", ToDate: "2024-03-31"}
		from, to, err := f.ResolveDates(earliest, latest)
		if err != nil {
			t.Fatal(err)
		}
		if !from.Equal(date("2024-03-01")) || !to.Equal(date("2024-03-31")) {
			t.Fatalf("got %s..%s", from, to)
		}
	})

	t.Run("partial bound keeps the other default", func(t *testing.T) {
		f := PeriodFilter{ToDate: "2024-06-30"}
		from, to, err := f.ResolveDates(earliest, latest)
		if err != nil {
			t.Fatal(err)
		}
		if !from.Equal(earliest) || !to.Equal(date("2024-06-30")) {
			t.Fatalf("got %s..%s", from, to)
		}
	})

	t.Run("inverted window rejected", func(t *testing.T) {
		f := PeriodFilter{FromDate: "2024-09-01", ToDate: "2024-08-01"}
		if _, _, err := f.ResolveDates(earliest, latest); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("garbage date rejected", func(t *testing.T) {
		f := PeriodFilter{FromDate: "01/03/2024"}
		if _, _, err := f.ResolveDates(earliest, latest); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("empty ledger resolves to zero bounds", func(t *testing.T) {
		from, to, err := PeriodFilter{}.ResolveDates(time.Time{}, time.Time{})
		if err != nil {
			t.Fatal(err)
		}
		if !from.IsZero() || !to.IsZero() {
			t.Fatalf("got %s..%s", from, to)
		}
	})
}

func TestResolveRange(t *testing.T) {
	t.Run("absent bounds span the whole chart", func(t *testing.T) {
		from, upto, err := PeriodFilter{}.ResolveRange()
		if err != nil {
			t.Fatal(err)
		}
		if from != 0 || upto != MaxKey {
			t.Fatalf("got %d..%d", from, upto)
		}
	})

	t.Run("explicit bounds parse as account codes", func(t *testing.T) {
		f := PeriodFilter{FromAccount: "1-01-00-0000", UptoAccount: "1-01-99-9999"}
		from, upto, err := f.ResolveRange()
		if err != nil {
			t.Fatal(err)
		}
		if from != 101000000 || upto != 101999999 {
			t.Fatalf("got %d..%d", from, upto)
		}
	})

	t.Run("malformed bound surfaces as malformed code", func(t *testing.T) {
		f := PeriodFilter{FromAccount: "1-1-01-0001"}
		if _, _, err := f.ResolveRange(); !errors.Is(err, ErrMalformedAccountCode) {
			t.Fatalf("got %v", err)
		}
	})

	t.Run("inverted range rejected", func(t *testing.T) {
		f := PeriodFilter{FromAccount: "2-00-00-0000", UptoAccount: "1-00-00-0000"}
		if _, _, err := f.ResolveRange(); err == nil {
			t.Fatal("expected error")
		}
	})
}
