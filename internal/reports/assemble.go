package reports

import "github.com/shopspring/decimal"

// AssembleOptions scopes which aggregated rows make the final report.
type AssembleOptions struct {
	// FromKey and UptoKey bound the emitted accounts, both inclusive.
	FromKey uint64
	UptoKey uint64
	// KeepZero emits accounts whose netted balance is zero. Most variants
	// drop them; ledger-style listings keep them.
	KeepZero bool
}

// Assemble filters aggregated balances to the requested key range, nets each
// account to a single-sided balance, and totals the emitted columns. Input is
// expected already key-sorted (Aggregate leaves it that way), so output order
// is ascending numeric key.
//
// The grand totals are plain sums over the emitted debit and credit columns.
// For a correctly posted double-entry ledger the detail-level columns balance;
// the assembler reports both sides without enforcing equality.
func Assemble(balances []AccountBalance, opts AssembleOptions) ([]Row, decimal.Decimal, decimal.Decimal) {
	if opts.UptoKey == 0 {
		opts.UptoKey = MaxKey
	}

	rows := make([]Row, 0, len(balances))
	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, bal := range balances {
		if bal.Key < opts.FromKey || bal.Key > opts.UptoKey {
			continue
		}
		debit, credit := bal.Net()
		if !opts.KeepZero && debit.IsZero() && credit.IsZero() {
			continue
		}
		rows = append(rows, Row{
			Code:   FormatKey(bal.Key),
			Name:   bal.Name,
			Tier:   bal.Tier.String(),
			Debit:  debit,
			Credit: credit,
		})
		totalDebit = totalDebit.Add(debit)
		totalCredit = totalCredit.Add(credit)
	}
	return rows, totalDebit, totalCredit
}
