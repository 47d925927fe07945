package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ledgerview/ledgerview/internal/tenants"
)

// amountPrinter renders grouped amounts for the CSV export.
var amountPrinter = message.NewPrinter(language.English)

// WriteReportCSV serialises assembled report rows to CSV.
func WriteReportCSV(w io.Writer, report Report) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Account", "Name", "Tier", "Debit", "Credit"}); err != nil {
		return err
	}
	for _, row := range report.Rows {
		record := []string{row.Code, row.Name, row.Tier, formatAmount(row.Debit), formatAmount(row.Credit)}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	if err := writer.Write([]string{"TOTAL", "", "", formatAmount(report.TotalDebit), formatAmount(report.TotalCredit)}); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

func formatAmount(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return amountPrinter.Sprintf("%.2f", f)
}

func (h *Handler) handleTrialBalanceCSV(w http.ResponseWriter, r *http.Request) {
	h.exportCSV(w, r, KindTrialBalance, h.service.TrialBalance)
}

func (h *Handler) handleCashBookCSV(w http.ResponseWriter, r *http.Request) {
	h.exportCSV(w, r, KindCashBook, h.service.CashBook)
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request, kind ReportKind, build buildFunc) {
	start := time.Now()
	tenant := tenants.FromContext(r.Context())
	if tenant == nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		h.respondFailure(w, start, http.StatusBadRequest, err.Error())
		return
	}
	report, err := build(r.Context(), TenantRef{ID: tenant.ID, Slug: tenant.Slug, Profile: tenant.Profile}, filter)
	if err != nil {
		h.respondError(w, r, start, "", tenant.Slug, err)
		return
	}

	var buf bytes.Buffer
	if err := WriteReportCSV(&buf, report); err != nil {
		h.respondFailure(w, start, http.StatusInternalServerError, "internal report error")
		return
	}
	filename := fmt.Sprintf("%s-%s-%s.csv", kind, tenant.Slug, formatDate(report.ToDate))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write(buf.Bytes())
}
