package reports

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
)

func bal(t *testing.T, code string, debit, credit int64) AccountBalance {
	t.Helper()
	key, err := ParseCode(code)
	if err != nil {
		t.Fatalf("ParseCode(%q): %v", code, err)
	}
	return AccountBalance{
		Code:   code,
		Key:    key,
		Debit:  decimal.NewFromInt(debit),
		Credit: decimal.NewFromInt(credit),
	}
}

func findByCode(t *testing.T, balances []AccountBalance, code string) AccountBalance {
	t.Helper()
	for _, b := range balances {
		if b.Code == code {
			return b
		}
	}
	t.Fatalf("account %s not found", code)
	return AccountBalance{}
}

// Two detail accounts under one sub-group: debit 100 and credit 40 net to a
// debit 60 carried up through the major group and the top-level class.
func TestAggregateScenario(t *testing.T) {
	balances := []AccountBalance{
		bal(t, "1-00-00-0000", 0, 0),
		bal(t, "1-01-00-0000", 0, 0),
		bal(t, "1-01-01-0000", 0, 0),
		bal(t, "1-01-01-0001", 100, 0),
		bal(t, "1-01-01-0002", 0, 40),
	}
	out := Aggregate(balances)

	sub := findByCode(t, out, "1-01-01-0000")
	if !sub.Debit.Equal(decimal.NewFromInt(100)) || !sub.Credit.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("sub-group sums = %s/%s, want 100/40", sub.Debit, sub.Credit)
	}
	debit, credit := sub.Net()
	if !debit.Equal(decimal.NewFromInt(60)) || !credit.IsZero() {
		t.Fatalf("sub-group net = %s/%s, want 60/0", debit, credit)
	}

	major := findByCode(t, out, "1-01-00-0000")
	if diff := major.Debit.Sub(major.Credit); !diff.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("major-group net = %s, want 60", diff)
	}

	top := findByCode(t, out, "1-00-00-0000")
	if diff := top.Debit.Sub(top.Credit); !diff.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("top-level net = %s, want 60", diff)
	}
}

// Group totals reflect the previous pass, not the raw leaf rows: a detail
// posting parked directly under a major group (no sub-group between) does not
// reach the major-group total, because pass two reads sub-group rows only.
func TestAggregatePassesConsumePreviousLevel(t *testing.T) {
	balances := []AccountBalance{
		bal(t, "2-00-00-0000", 0, 0),
		bal(t, "2-01-00-0000", 0, 0),
		bal(t, "2-01-00-0005", 25, 0),
		bal(t, "2-01-03-0000", 0, 0),
		bal(t, "2-01-03-0009", 75, 0),
	}
	out := Aggregate(balances)

	major := findByCode(t, out, "2-01-00-0000")
	if !major.Debit.Equal(decimal.NewFromInt(75)) {
		t.Fatalf("major-group debit = %s, want 75 (sub-group totals only)", major.Debit)
	}
	detail := findByCode(t, out, "2-01-00-0005")
	if !detail.Debit.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("detail leaf mutated: %s", detail.Debit)
	}
}

// Roll-up correctness over a synthetic random chart: every group account's
// net equals the sum of nets over its detail descendants, transitively.
func TestAggregateRollUpProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	var balances []AccountBalance
	groups := make(map[uint64]bool)
	for class := uint64(1); class <= 3; class++ {
		top := class * topLevelSpan
		groups[top] = true
		for m := 0; m < 3; m++ {
			major := top + uint64(rng.Intn(99)+1)*majorGroupSpan
			if groups[major] {
				continue
			}
			groups[major] = true
			for sg := 0; sg < 3; sg++ {
				sub := major + uint64(rng.Intn(99)+1)*subGroupSpan
				if groups[sub] {
					continue
				}
				groups[sub] = true
				for d := 0; d < 4; d++ {
					detail := sub + uint64(rng.Intn(9999)+1)
					balances = append(balances, AccountBalance{
						Code:   FormatKey(detail),
						Key:    detail,
						Debit:  decimal.NewFromInt(int64(rng.Intn(10_000))),
						Credit: decimal.NewFromInt(int64(rng.Intn(10_000))),
					})
				}
			}
		}
	}
	for key := range groups {
		balances = append(balances, AccountBalance{Code: FormatKey(key), Key: key})
	}

	out := Aggregate(balances)

	for _, group := range out {
		if group.Tier == TierDetail {
			continue
		}
		width := span(group.Tier)
		want := decimal.Zero
		for _, leaf := range out {
			if leaf.Tier != TierDetail {
				continue
			}
			if leaf.Key >= group.Key && leaf.Key < group.Key+width {
				want = want.Add(leaf.Debit.Sub(leaf.Credit))
			}
		}
		got := group.Debit.Sub(group.Credit)
		if !got.Equal(want) {
			t.Fatalf("group %s net = %s, want %s", group.Code, got, want)
		}
	}
}

func TestNetSignExclusivity(t *testing.T) {
	cases := []AccountBalance{
		{Debit: decimal.NewFromInt(100), Credit: decimal.NewFromInt(40)},
		{Debit: decimal.NewFromInt(40), Credit: decimal.NewFromInt(100)},
		{Debit: decimal.NewFromInt(50), Credit: decimal.NewFromInt(50)},
		{},
	}
	for _, c := range cases {
		debit, credit := c.Net()
		if !debit.IsZero() && !credit.IsZero() {
			t.Fatalf("both sides non-zero for %s/%s", c.Debit, c.Credit)
		}
		if !debit.Sub(credit).Equal(c.Debit.Sub(c.Credit)) {
			t.Fatalf("net changed the balance: %s/%s -> %s/%s", c.Debit, c.Credit, debit, credit)
		}
	}
}
