package reports

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerview/ledgerview/internal/ledger"
	"github.com/ledgerview/ledgerview/internal/observability"
	"github.com/ledgerview/ledgerview/internal/platform/httpx"
	"github.com/ledgerview/ledgerview/internal/tenants"
)

// Envelope is the report response contract. Failures come back through the
// same shape with success=false; external database errors never escape as
// bare 500s.
type Envelope struct {
	Success          bool            `json:"success"`
	Message          string          `json:"message"`
	Data             any             `json:"data"`
	FromDate         string          `json:"fromDate"`
	ToDate           string          `json:"toDate"`
	TotalDebit       decimal.Decimal `json:"totalDebit"`
	TotalCredit      decimal.Decimal `json:"totalCredit"`
	SkippedRows      int             `json:"skippedRows,omitempty"`
	ProcessingTimeMs int64           `json:"processingTimeMs"`
}

// ReportService is the pipeline contract consumed by the handler.
type ReportService interface {
	TrialBalance(ctx context.Context, ref TenantRef, filter PeriodFilter) (Report, error)
	CashBook(ctx context.Context, ref TenantRef, filter PeriodFilter) (Report, error)
	Aging(ctx context.Context, ref TenantRef, filter PeriodFilter) (Report, error)
}

// reportQuery is the validated shape of the report query string.
type reportQuery struct {
	FromDate    string `validate:"omitempty,datetime=2006-01-02"`
	ToDate      string `validate:"omitempty,datetime=2006-01-02"`
	FromAccount string `validate:"omitempty,max=16"`
	UptoAccount string `validate:"omitempty,max=16"`
}

var queryValidator = validator.New()

// Handler serves the report endpoints.
type Handler struct {
	logger  *slog.Logger
	service ReportService
	metrics *observability.Metrics
}

// NewHandler constructs the reports HTTP handler. metrics may be nil.
func NewHandler(logger *slog.Logger, service ReportService, metrics *observability.Metrics) *Handler {
	return &Handler{logger: logger, service: service, metrics: metrics}
}

func (h *Handler) handleTrialBalance(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, KindTrialBalance, h.service.TrialBalance)
}

func (h *Handler) handleCashBook(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, KindCashBook, h.service.CashBook)
}

func (h *Handler) handleAging(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, KindAging, h.service.Aging)
}

type buildFunc func(ctx context.Context, ref TenantRef, filter PeriodFilter) (Report, error)

func (h *Handler) run(w http.ResponseWriter, r *http.Request, kind ReportKind, build buildFunc) {
	start := time.Now()
	tenant := tenants.FromContext(r.Context())
	if tenant == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "tenant not resolved")
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		h.respondFailure(w, start, http.StatusBadRequest, err.Error())
		return
	}

	runID := uuid.NewString()
	report, err := build(r.Context(), TenantRef{
		ID:      tenant.ID,
		Slug:    tenant.Slug,
		Profile: tenant.Profile,
	}, filter)
	if err != nil {
		h.respondError(w, r, start, runID, tenant.Slug, err)
		return
	}
	h.metrics.ObserveReport(string(kind), report.Elapsed)

	var data any = report.Rows
	if report.AgingRows != nil {
		data = report.AgingRows
	}
	if data == nil {
		data = []Row{}
	}
	httpx.JSON(w, http.StatusOK, Envelope{
		Success:          true,
		Message:          "ok",
		Data:             data,
		FromDate:         formatDate(report.FromDate),
		ToDate:           formatDate(report.ToDate),
		TotalDebit:       report.TotalDebit,
		TotalCredit:      report.TotalCredit,
		SkippedRows:      report.Skipped,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	})
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, start time.Time, runID, slug string, err error) {
	h.logger.Error("report failed",
		slog.String("run", runID),
		slog.String("tenant", slug),
		slog.String("path", r.URL.Path),
		slog.Any("error", err))

	switch {
	case errors.Is(err, ErrMalformedAccountCode):
		h.respondFailure(w, start, http.StatusBadRequest, "account range bound is not a valid account code")
	case errors.Is(err, ledger.ErrQueryTimeout):
		h.metrics.CountTenantFailure("timeout")
		h.respondFailure(w, start, http.StatusGatewayTimeout, "query exceeded the time limit; narrow the date range and retry")
	case errors.Is(err, ledger.ErrConnectionFailed):
		h.metrics.CountTenantFailure("connection")
		h.respondFailure(w, start, http.StatusBadGateway, "tenant database unreachable")
	case errors.Is(err, ledger.ErrQuerySyntax):
		h.metrics.CountTenantFailure("syntax")
		h.respondFailure(w, start, http.StatusInternalServerError, "internal report error")
	default:
		h.respondFailure(w, start, http.StatusInternalServerError, "internal report error")
	}
}

func (h *Handler) respondFailure(w http.ResponseWriter, start time.Time, status int, message string) {
	httpx.JSON(w, status, Envelope{
		Success:          false,
		Message:          message,
		Data:             []Row{},
		TotalDebit:       decimal.Zero,
		TotalCredit:      decimal.Zero,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	})
}

func parseFilter(r *http.Request) (PeriodFilter, error) {
	q := r.URL.Query()
	query := reportQuery{
		FromDate:    q.Get("fromDate"),
		ToDate:      q.Get("toDate"),
		FromAccount: q.Get("fromAccount"),
		UptoAccount: q.Get("uptoAccount"),
	}
	if err := queryValidator.Struct(query); err != nil {
		return PeriodFilter{}, errors.New("invalid date filter; expected YYYY-MM-DD")
	}
	return PeriodFilter{
		FromDate:    query.FromDate,
		ToDate:      query.ToDate,
		FromAccount: query.FromAccount,
		UptoAccount: query.UptoAccount,
	}, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
