package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/cron"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Reconciler runs the end-of-day procedures on demand.
type Reconciler interface {
	RunReconciliation(ctx context.Context) (cron.ReconciliationResult, error)
}

type ReportHandler interface {
	// Daily attendance report, optionally for one date
	GetDailyReport(w http.ResponseWriter, r *http.Request)

	// Monthly attendance summary and its xlsx export
	GetMonthlyReport(w http.ResponseWriter, r *http.Request)
	ExportMonthlyReport(w http.ResponseWriter, r *http.Request)

	// Manual end-of-day run
	RunReconciliation(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
	reconciler    Reconciler
}

func NewReportHandler(reportService report.ReportService, reconciler Reconciler) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
		reconciler:    reconciler,
	}
}

// GetDailyReport handles GET /reports/daily
func (h *reportHandlerImpl) GetDailyReport(w http.ResponseWriter, r *http.Request) {
	query := report.DailyReportQuery{Date: queryPtr(r, "date")}
	date, err := query.Parse()
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.reportService.DailyReport(r.Context(), date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetMonthlyReport handles GET /reports/monthly
func (h *reportHandlerImpl) GetMonthlyReport(w http.ResponseWriter, r *http.Request) {
	query := report.MonthlyReportQuery{
		Year:  r.URL.Query().Get("year"),
		Month: r.URL.Query().Get("month"),
	}
	year, month, err := query.Parse()
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.reportService.MonthlyReport(r.Context(), year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ExportMonthlyReport handles GET /reports/monthly/export
func (h *reportHandlerImpl) ExportMonthlyReport(w http.ResponseWriter, r *http.Request) {
	query := report.MonthlyReportQuery{
		Year:  r.URL.Query().Get("year"),
		Month: r.URL.Query().Get("month"),
	}
	year, month, err := query.Parse()
	if err != nil {
		response.HandleError(w, err)
		return
	}

	body, err := h.reportService.ExportMonthly(r.Context(), year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, xlsxContentType, fmt.Sprintf("attendance-%04d-%02d.xlsx", year, int(month)), body)
}

// RunReconciliation handles POST /reconciliation/run
func (h *reportHandlerImpl) RunReconciliation(w http.ResponseWriter, r *http.Request) {
	result, err := h.reconciler.RunReconciliation(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if result.RestDay {
		response.SuccessWithMessage(w, "Rest day, nothing to reconcile", result)
		return
	}
	response.SuccessWithMessage(w, "Reconciliation completed", result)
}
