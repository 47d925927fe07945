package reports

import (
	"math/rand"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		code string
		want Tier
	}{
		{"1-00-00-0000", TierTopLevel},
		{"2-00-00-0000", TierTopLevel},
		{"1-01-00-0000", TierMajorGroup},
		{"1-99-00-0000", TierMajorGroup},
		{"1-01-01-0000", TierSubGroup},
		{"1-01-99-0000", TierSubGroup},
		{"1-01-01-0001", TierDetail},
		{"1-01-00-0001", TierDetail},
		{"1-00-00-0001", TierDetail},
		{"9-99-99-9999", TierDetail},
	}
	for _, tc := range cases {
		key, err := ParseCode(tc.code)
		if err != nil {
			t.Fatalf("ParseCode(%q): %v", tc.code, err)
		}
		if got := Classify(key); got != tc.want {
			t.Fatalf("Classify(%s) = %v, want %v", tc.code, got, tc.want)
		}
	}
}

// Every key belongs to exactly one tier: the predicate of a key's tier holds
// and no coarser predicate does; classifying twice is trivially idempotent.
func TestClassifyPartition(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10_000; i++ {
		key := uint64(rng.Int63n(int64(MaxKey))) + 1
		tier := Classify(key)
		if Classify(key) != tier {
			t.Fatalf("classify not idempotent for %d", key)
		}
		switch tier {
		case TierTopLevel:
			if key%topLevelSpan != 0 {
				t.Fatalf("key %d classified top-level but not on boundary", key)
			}
		case TierMajorGroup:
			if key%majorGroupSpan != 0 || key%topLevelSpan == 0 {
				t.Fatalf("key %d misclassified major-group", key)
			}
		case TierSubGroup:
			if key%subGroupSpan != 0 || key%majorGroupSpan == 0 {
				t.Fatalf("key %d misclassified sub-group", key)
			}
		case TierDetail:
			if key%subGroupSpan == 0 {
				t.Fatalf("key %d classified detail but sits on a boundary", key)
			}
		}
	}
}
