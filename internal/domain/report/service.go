package report

import (
	"context"
	"time"
)

type ReportService interface {
	// DailyReport aggregates the records of date, or every record when date is nil.
	DailyReport(ctx context.Context, date *time.Time) (DailyReport, error)

	// MonthlyReport summarises each reconciled employee over a calendar month.
	MonthlyReport(ctx context.Context, year int, month time.Month) (MonthlyReport, error)

	// ExportMonthly renders MonthlyReport as an xlsx workbook.
	ExportMonthly(ctx context.Context, year int, month time.Month) ([]byte, error)

	// Dispatch aggregates today's report and hands it to every sink. Delivery
	// failures are logged; Dispatch itself only fails when aggregation does.
	Dispatch(ctx context.Context, day time.Time) error
}

// Sink delivers a finished daily report to one external channel.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, r DailyReport) error
}
