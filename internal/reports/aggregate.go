package reports

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Aggregate rolls leaf balances up through the hierarchy in three bottom-up
// passes. Pass one gives every sub-group the sum of the detail accounts in
// its key range, pass two gives every major group the sum of the updated
// sub-group totals, pass three gives every top-level account the sum of the
// updated major-group totals. Each pass reads the previous pass's results, so
// a group total always reflects everything below it.
//
// The input slice is sorted by numeric key and mutated in place; group
// lookups use binary search over the sorted keys instead of rescanning the
// whole chart per account.
func Aggregate(balances []AccountBalance) []AccountBalance {
	sort.Slice(balances, func(i, j int) bool {
		return balances[i].Key < balances[j].Key
	})
	for i := range balances {
		balances[i].Tier = Classify(balances[i].Key)
	}

	rollUp(balances, TierSubGroup, TierDetail)
	rollUp(balances, TierMajorGroup, TierSubGroup)
	rollUp(balances, TierTopLevel, TierMajorGroup)
	return balances
}

// rollUp replaces every `into`-tier account's sums with the total of the
// `from`-tier accounts whose keys fall inside its range.
func rollUp(balances []AccountBalance, into, from Tier) {
	width := span(into)
	for i := range balances {
		if balances[i].Tier != into {
			continue
		}
		lo := balances[i].Key
		hi := lo + width // half-open upper bound

		debit := decimal.Zero
		credit := decimal.Zero
		start := sort.Search(len(balances), func(j int) bool {
			return balances[j].Key >= lo
		})
		for j := start; j < len(balances) && balances[j].Key < hi; j++ {
			if balances[j].Tier != from {
				continue
			}
			debit = debit.Add(balances[j].Debit)
			credit = credit.Add(balances[j].Credit)
		}
		balances[i].Debit = debit
		balances[i].Credit = credit
	}
}
