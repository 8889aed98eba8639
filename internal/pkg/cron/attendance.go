package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
)

// DailySchedule holds the trigger times of the reconciliation jobs. They must
// fire in the order backfill, sweep, report.
type DailySchedule struct {
	BackfillAt ClockTime
	SweepAt    ClockTime
	ReportAt   ClockTime
}

// BatchResult counts what a batch procedure did with each employee or record.
type BatchResult struct {
	Created int  `json:"created"`
	OnLeave int  `json:"on_leave"`
	Marked  int  `json:"marked"`
	Skipped int  `json:"skipped"`
	Failed  int  `json:"failed"`
	RestDay bool `json:"rest_day"`
}

// ReconciliationResult is the outcome of one manual end-of-day run.
type ReconciliationResult struct {
	Date     string      `json:"date"`
	RestDay  bool        `json:"rest_day"`
	Backfill BatchResult `json:"backfill"`
	Sweep    BatchResult `json:"sweep"`
	Reported bool        `json:"reported"`
}

type AttendanceJobs struct {
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	leaveIndex     leave.WindowIndex
	reportSvc      report.ReportService
	loc            *time.Location
	restDay        time.Weekday
	now            func() time.Time
}

func NewAttendanceJobs(
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	leaveIndex leave.WindowIndex,
	reportSvc report.ReportService,
	loc *time.Location,
	restDay time.Weekday,
) *AttendanceJobs {
	if loc == nil {
		loc = time.Local
	}
	return &AttendanceJobs{
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		leaveIndex:     leaveIndex,
		reportSvc:      reportSvc,
		loc:            loc,
		restDay:        restDay,
		now:            time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler, schedule DailySchedule) {
	scheduler.AddDailyJob("backfill_absences", schedule.BackfillAt, j.loc, func(ctx context.Context) error {
		_, err := j.BackfillAbsences(ctx)
		return err
	})
	scheduler.AddDailyJob("sweep_missed_checkouts", schedule.SweepAt, j.loc, func(ctx context.Context) error {
		_, err := j.SweepMissedCheckouts(ctx)
		return err
	})
	scheduler.AddDailyJob("dispatch_daily_report", schedule.ReportAt, j.loc, j.DispatchDailyReport)
}

func (j *AttendanceJobs) isRestDay(now time.Time) bool {
	return now.In(j.loc).Weekday() == j.restDay
}

// perEmployee runs fn with errors and panics contained to one employee.
func perEmployee(job, employeeID string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			slog.Error("Cron: employee step failed", "job", job, "employee_id", employeeID, "error", err)
		}
	}()
	return fn()
}

// BackfillAbsences gives every reconciled employee without a record today an
// Absent or On Leave record. Running it again the same day creates nothing.
func (j *AttendanceJobs) BackfillAbsences(ctx context.Context) (BatchResult, error) {
	now := j.now()
	if j.isRestDay(now) {
		slog.Info("Cron: Rest day, skipping absence backfill")
		return BatchResult{RestDay: true}, nil
	}

	today := utils.CalendarDay(now, j.loc)
	slog.Info("Cron: Starting absence backfill", "date", utils.DateKey(today))

	employees, err := j.employeeRepo.ListByRole(ctx, employee.RoleUser)
	if err != nil {
		return BatchResult{}, fmt.Errorf("failed to list employees: %w", err)
	}

	var result BatchResult
	for _, emp := range employees {
		err := perEmployee("backfill_absences", emp.ID, func() error {
			existing, err := j.attendanceRepo.GetByEmployeeAndDate(ctx, emp.ID, today)
			if err != nil {
				return fmt.Errorf("failed to read attendance: %w", err)
			}
			if existing != nil {
				result.Skipped++
				return nil
			}

			onLeave, err := j.leaveIndex.IsOnLeave(ctx, emp.ID, today)
			if err != nil {
				return err
			}

			_, err = j.attendanceRepo.Create(ctx, attendance.NonWorkingRecord(emp.ID, today, onLeave))
			if errors.Is(err, attendance.ErrDuplicateAttendance) {
				// A late check-in won the insert; keep its record.
				winner, readErr := j.attendanceRepo.GetByEmployeeAndDate(ctx, emp.ID, today)
				if readErr != nil {
					return fmt.Errorf("failed to read conflicting attendance: %w", readErr)
				}
				if winner != nil {
					slog.Info("Cron: Backfill lost insert race", "employee_id", emp.ID, "status", winner.CheckInStatus)
				}
				result.Skipped++
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to create attendance: %w", err)
			}

			result.Created++
			if onLeave {
				result.OnLeave++
			}
			return nil
		})
		if err != nil {
			result.Failed++
		}
	}

	slog.Info("Cron: Absence backfill completed",
		"created", result.Created,
		"on_leave", result.OnLeave,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	return result, nil
}

// SweepMissedCheckouts marks today's open working records as Missed Check-out.
func (j *AttendanceJobs) SweepMissedCheckouts(ctx context.Context) (BatchResult, error) {
	now := j.now()
	if j.isRestDay(now) {
		slog.Info("Cron: Rest day, skipping missed checkout sweep")
		return BatchResult{RestDay: true}, nil
	}

	today := utils.CalendarDay(now, j.loc)
	slog.Info("Cron: Starting missed checkout sweep", "date", utils.DateKey(today))

	employees, err := j.employeeRepo.ListByRole(ctx, employee.RoleUser)
	if err != nil {
		return BatchResult{}, fmt.Errorf("failed to list employees: %w", err)
	}
	reconciled := make(map[string]struct{}, len(employees))
	for _, emp := range employees {
		reconciled[emp.ID] = struct{}{}
	}

	open, err := j.attendanceRepo.ListOpenByDate(ctx, today)
	if err != nil {
		return BatchResult{}, fmt.Errorf("failed to list open attendances: %w", err)
	}

	var result BatchResult
	for _, record := range open {
		if _, ok := reconciled[record.EmployeeID]; !ok {
			continue
		}

		err := perEmployee("sweep_missed_checkouts", record.EmployeeID, func() error {
			changed, err := j.attendanceRepo.MarkMissedCheckout(ctx, record.ID)
			if err != nil {
				return fmt.Errorf("failed to mark missed checkout: %w", err)
			}
			if changed {
				result.Marked++
			} else {
				// Checked out (or already marked) since the listing.
				result.Skipped++
			}
			return nil
		})
		if err != nil {
			result.Failed++
		}
	}

	slog.Info("Cron: Missed checkout sweep completed",
		"marked", result.Marked,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	return result, nil
}

// DispatchDailyReport aggregates today's records and hands them to the report sinks.
func (j *AttendanceJobs) DispatchDailyReport(ctx context.Context) error {
	now := j.now()
	if j.isRestDay(now) {
		slog.Info("Cron: Rest day, skipping daily report")
		return nil
	}

	slog.Info("Cron: Dispatching daily report", "date", utils.DateKey(utils.CalendarDay(now, j.loc)))
	if err := j.reportSvc.Dispatch(ctx, now); err != nil {
		return fmt.Errorf("failed to dispatch daily report: %w", err)
	}
	return nil
}

// RunReconciliation runs backfill, sweep and report in order, immediately.
func (j *AttendanceJobs) RunReconciliation(ctx context.Context) (ReconciliationResult, error) {
	now := j.now()
	result := ReconciliationResult{Date: utils.DateKey(utils.CalendarDay(now, j.loc))}
	if j.isRestDay(now) {
		result.RestDay = true
		return result, nil
	}

	var errs []error

	backfill, err := j.BackfillAbsences(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	result.Backfill = backfill

	sweep, err := j.SweepMissedCheckouts(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	result.Sweep = sweep

	if err := j.DispatchDailyReport(ctx); err != nil {
		errs = append(errs, err)
	} else {
		result.Reported = true
	}

	return result, errors.Join(errs...)
}
