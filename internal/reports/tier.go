package reports

// Classify assigns a numeric key to its hierarchy tier. The checks run
// coarsest-first: a top-level key is also divisible by the finer boundaries,
// so the order is what keeps the four tiers a partition of the key space.
func Classify(key uint64) Tier {
	switch {
	case key%topLevelSpan == 0:
		return TierTopLevel
	case key%majorGroupSpan == 0:
		return TierMajorGroup
	case key%subGroupSpan == 0:
		return TierSubGroup
	default:
		return TierDetail
	}
}

// span returns the half-open width of the key range a group account of the
// given tier covers. Detail accounts cover only themselves.
func span(t Tier) uint64 {
	switch t {
	case TierSubGroup:
		return subGroupSpan
	case TierMajorGroup:
		return majorGroupSpan
	case TierTopLevel:
		return topLevelSpan
	default:
		return 1
	}
}
