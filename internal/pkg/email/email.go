package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/config"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

// sender is the part of *gomail.Dialer the mailer uses.
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// ReportMailer delivers the daily attendance report to the configured recipients.
type ReportMailer struct {
	cfg       config.SMTPConfig
	loc       *time.Location
	templates *template.Template
	dialer    sender
}

// NewReportMailer creates a mailer that satisfies report.Sink.
func NewReportMailer(cfg config.SMTPConfig, loc *time.Location) (*ReportMailer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &ReportMailer{
		cfg:       cfg,
		loc:       loc,
		templates: tmpl,
		dialer:    gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}, nil
}

func (m *ReportMailer) Name() string {
	return "email"
}

type reportSection struct {
	Title string
	Lines []string
}

type dailyReportData struct {
	Date     string
	Total    int
	Sections []reportSection
}

// Deliver renders r and mails it to every recipient in one message.
func (m *ReportMailer) Deliver(ctx context.Context, r report.DailyReport) error {
	// Skip sending if SMTP is not configured
	if m.cfg.Host == "" || len(m.cfg.Recipients) == 0 {
		slog.Warn("SMTP not configured, skipping report email")
		return nil
	}

	body, err := m.Render(r)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.cfg.From, m.cfg.FromName)
	msg.SetHeader("To", m.cfg.Recipients...)
	msg.SetHeader("Subject", fmt.Sprintf("Attendance Report %s", reportDate(r)))
	msg.SetBody("text/html", body)

	if err := ctx.Err(); err != nil {
		return err
	}
	// One attempt per dispatch; the caller logs failures.
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send report email: %w", err)
	}
	slog.Info("Report email sent", "recipients", len(m.cfg.Recipients))
	return nil
}

// Render produces the HTML body for r.
func (m *ReportMailer) Render(r report.DailyReport) (string, error) {
	data := dailyReportData{
		Date:  reportDate(r),
		Total: r.TotalAttendance,
		Sections: []reportSection{
			{Title: "Late Employees", Lines: durationLines(r.LateEmployees, "Late by")},
			{Title: "Early Check-out", Lines: durationLines(r.EarlyCheckOutEmployees, "Checked out early by")},
			{Title: "Missed Check-out", Lines: nameLines(r.MissedCheckOut)},
			{Title: "Absent", Lines: nameLines(r.AbsentEmployees)},
			{Title: "On Leave", Lines: nameLines(r.OnLeaveEmployees)},
			{Title: "Normal Checked Out", Lines: m.timeLines(r.CheckedOutEmployees)},
			{Title: "On Time", Lines: m.timeLines(r.OnTimeEmployees)},
		},
	}
	if len(r.Unclassified) > 0 {
		data.Sections = append(data.Sections, reportSection{Title: "Unclassified", Lines: nameLines(r.Unclassified)})
	}

	var body bytes.Buffer
	if err := m.templates.ExecuteTemplate(&body, "daily_report.html", data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return body.String(), nil
}

func reportDate(r report.DailyReport) string {
	if r.ReportDate == nil {
		return "All records"
	}
	return r.ReportDate.Format(utils.ReportDateLayout)
}

func nameLines(entries []report.Entry) []string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, e.EmployeeName)
	}
	return lines
}

func durationLines(entries []report.Entry, label string) []string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Duration == nil {
			lines = append(lines, e.EmployeeName)
			continue
		}
		lines = append(lines, fmt.Sprintf("%s (%s %s)", e.EmployeeName, label, *e.Duration))
	}
	return lines
}

func (m *ReportMailer) timeLines(entries []report.Entry) []string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Time == nil {
			lines = append(lines, e.EmployeeName)
			continue
		}
		lines = append(lines, fmt.Sprintf("%s (%s)", e.EmployeeName, utils.FormatClock(e.Time, m.loc)))
	}
	return lines
}
