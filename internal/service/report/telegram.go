package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
)

// FormatTelegram renders the report as a Telegram Markdown message.
func FormatTelegram(r report.DailyReport, loc *time.Location) string {
	date := "All records"
	if r.ReportDate != nil {
		date = r.ReportDate.Format(utils.ReportDateLayout)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📅 *Attendance Report:* %s\n\n", date)
	fmt.Fprintf(&b, "👥 *Total Attendance:* %d\n\n", r.TotalAttendance)

	section(&b, "⏰ *Late Employees:*", r.LateEmployees, func(e report.Entry) string {
		return fmt.Sprintf("- %s (Late by %s)", e.EmployeeName, deref(e.Duration))
	})
	section(&b, "🏃‍♂️ *Early Check-out Employees:*", r.EarlyCheckOutEmployees, func(e report.Entry) string {
		return fmt.Sprintf("- %s (Checked out early by %s)", e.EmployeeName, deref(e.Duration))
	})
	section(&b, "🚫 *Missed Check-out Employees:*", r.MissedCheckOut, nameOnly)
	section(&b, "❌ *Absent Employees:*", r.AbsentEmployees, nameOnly)
	section(&b, "🌴 *On Leave Employees:*", r.OnLeaveEmployees, nameOnly)
	section(&b, "✅ *Normal Checked Out Employees:*", r.CheckedOutEmployees, func(e report.Entry) string {
		return fmt.Sprintf("- %s (%s)", e.EmployeeName, utils.FormatClock(e.Time, loc))
	})
	section(&b, "⏳ *On Time Employees:*", r.OnTimeEmployees, func(e report.Entry) string {
		return fmt.Sprintf("- %s (%s)", e.EmployeeName, utils.FormatClock(e.Time, loc))
	})
	if len(r.Unclassified) > 0 {
		section(&b, "❔ *Unclassified Records:*", r.Unclassified, nameOnly)
	}

	return strings.TrimRight(b.String(), "\n")
}

func section(b *strings.Builder, title string, entries []report.Entry, line func(report.Entry) string) {
	b.WriteString(title)
	b.WriteString("\n")
	if len(entries) == 0 {
		b.WriteString("None\n\n")
		return
	}
	for _, e := range entries {
		b.WriteString(line(e))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func nameOnly(e report.Entry) string {
	return "- " + e.EmployeeName
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

// TelegramSink posts the daily report straight to the report topic.
type TelegramSink struct {
	transport notification.Transport
	loc       *time.Location
}

func NewTelegramSink(transport notification.Transport, loc *time.Location) *TelegramSink {
	return &TelegramSink{transport: transport, loc: loc}
}

func (t *TelegramSink) Name() string {
	return "telegram"
}

func (t *TelegramSink) Deliver(ctx context.Context, r report.DailyReport) error {
	return t.transport.Send(ctx, notification.Message{
		Topic:     notification.TopicReport,
		Text:      FormatTelegram(r, t.loc),
		CreatedAt: time.Now(),
	})
}
