package report

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
	"golang.org/x/sync/errgroup"
)

type ReportServiceImpl struct {
	attendance.AttendanceRepository
	employee.EmployeeRepository
	sinks []report.Sink
	loc   *time.Location
}

func NewReportService(
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	loc *time.Location,
	sinks ...report.Sink,
) report.ReportService {
	if loc == nil {
		loc = time.Local
	}
	return &ReportServiceImpl{
		AttendanceRepository: attendanceRepo,
		EmployeeRepository:   employeeRepo,
		sinks:                sinks,
		loc:                  loc,
	}
}

func (s *ReportServiceImpl) employeeNames(ctx context.Context) (map[string]string, error) {
	employees, err := s.EmployeeRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	names := make(map[string]string, len(employees))
	for _, e := range employees {
		names[e.ID] = e.Name
	}
	return names, nil
}

// DailyReport implements report.ReportService.
func (s *ReportServiceImpl) DailyReport(ctx context.Context, date *time.Time) (report.DailyReport, error) {
	filter := attendance.AttendanceFilter{}
	if date != nil {
		day := utils.CalendarDay(*date, time.UTC)
		filter.Date = &day
		date = &day
	}

	records, err := s.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return report.DailyReport{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	names, err := s.employeeNames(ctx)
	if err != nil {
		return report.DailyReport{}, err
	}

	return Aggregate(date, records, names), nil
}

// Aggregate partitions records into the report categories. Every record lands
// in exactly one category, so the category sizes sum to TotalAttendance.
func Aggregate(date *time.Time, records []attendance.Attendance, names map[string]string) report.DailyReport {
	r := report.DailyReport{
		ReportDate:             date,
		TotalAttendance:        len(records),
		LateEmployees:          []report.Entry{},
		EarlyCheckOutEmployees: []report.Entry{},
		MissedCheckOut:         []report.Entry{},
		AbsentEmployees:        []report.Entry{},
		OnLeaveEmployees:       []report.Entry{},
		OnTimeEmployees:        []report.Entry{},
		CheckedOutEmployees:    []report.Entry{},
	}

	for _, a := range records {
		entry := report.Entry{
			AttendanceID: a.ID,
			EmployeeID:   a.EmployeeID,
			EmployeeName: names[a.EmployeeID],
		}
		if entry.EmployeeName == "" {
			entry.EmployeeName = a.EmployeeID
		}

		switch report.Classify(a) {
		case report.CategoryLate:
			entry.Duration = a.CheckInLateDuration
			r.LateEmployees = append(r.LateEmployees, entry)
		case report.CategoryEarlyCheckOut:
			entry.Duration = a.CheckOutEarlyDuration
			r.EarlyCheckOutEmployees = append(r.EarlyCheckOutEmployees, entry)
		case report.CategoryMissedCheckOut:
			r.MissedCheckOut = append(r.MissedCheckOut, entry)
		case report.CategoryAbsent:
			r.AbsentEmployees = append(r.AbsentEmployees, entry)
		case report.CategoryOnLeave:
			r.OnLeaveEmployees = append(r.OnLeaveEmployees, entry)
		case report.CategoryOnTime:
			entry.Time = a.TimeIn
			r.OnTimeEmployees = append(r.OnTimeEmployees, entry)
		case report.CategoryCheckedOut:
			entry.Time = a.TimeOut
			r.CheckedOutEmployees = append(r.CheckedOutEmployees, entry)
		default:
			r.Unclassified = append(r.Unclassified, entry)
		}
	}

	return r
}

// MonthlyReport implements report.ReportService.
func (s *ReportServiceImpl) MonthlyReport(ctx context.Context, year int, month time.Month) (report.MonthlyReport, error) {
	if month < time.January || month > time.December {
		return report.MonthlyReport{}, report.ErrInvalidMonth
	}

	employees, err := s.EmployeeRepository.ListByRole(ctx, employee.RoleUser)
	if err != nil {
		return report.MonthlyReport{}, fmt.Errorf("failed to list employees: %w", err)
	}

	from, to := utils.MonthRange(year, month)
	records, err := s.AttendanceRepository.List(ctx, attendance.AttendanceFilter{From: &from, To: &to})
	if err != nil {
		return report.MonthlyReport{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	summaries := make(map[string]*report.MonthlySummary, len(employees))
	for _, e := range employees {
		summaries[e.ID] = &report.MonthlySummary{EmployeeID: e.ID, EmployeeName: e.Name}
	}

	for _, a := range records {
		summary, ok := summaries[a.EmployeeID]
		if !ok {
			continue
		}
		summary.Add(report.Classify(a))
	}

	result := report.MonthlyReport{
		Year:      year,
		Month:     int(month),
		Employees: make([]report.MonthlySummary, 0, len(summaries)),
	}
	for _, summary := range summaries {
		result.Employees = append(result.Employees, *summary)
	}
	sort.Slice(result.Employees, func(i, j int) bool {
		if result.Employees[i].EmployeeName != result.Employees[j].EmployeeName {
			return result.Employees[i].EmployeeName < result.Employees[j].EmployeeName
		}
		return result.Employees[i].EmployeeID < result.Employees[j].EmployeeID
	})

	return result, nil
}

// Dispatch implements report.ReportService.
func (s *ReportServiceImpl) Dispatch(ctx context.Context, day time.Time) error {
	date := utils.CalendarDay(day, s.loc)
	r, err := s.DailyReport(ctx, &date)
	if err != nil {
		return err
	}

	var g errgroup.Group
	for _, sink := range s.sinks {
		g.Go(func() error {
			if err := sink.Deliver(ctx, r); err != nil {
				slog.Error("Failed to deliver daily report", "sink", sink.Name(), "date", utils.DateKey(date), "error", err)
				return nil
			}
			slog.Info("Daily report delivered", "sink", sink.Name(), "date", utils.DateKey(date), "total", r.TotalAttendance)
			return nil
		})
	}
	return g.Wait()
}
