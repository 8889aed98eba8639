package cron

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/memory"
	leaveservice "github.com/cmlabs-hris/attendance-backend-go/internal/service/leave"
	reportservice "github.com/cmlabs-hris/attendance-backend-go/internal/service/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wib = time.FixedZone("WIB", 7*60*60)

// 2024-05-01 is a Wednesday.
var wednesday = time.Date(2024, 5, 1, 17, 0, 0, 0, wib)

type recordingSink struct {
	mu      sync.Mutex
	reports []report.DailyReport
	err     error
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Deliver(_ context.Context, r report.DailyReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
	return s.err
}

type harness struct {
	jobs        *AttendanceJobs
	attendances attendance.AttendanceRepository
	employees   employee.EmployeeRepository
	leaves      leave.LeaveService
	sink        *recordingSink
	now         time.Time
}

func newHarness(t *testing.T, now time.Time) *harness {
	t.Helper()
	store := memory.NewStore()
	h := &harness{
		attendances: memory.NewAttendanceRepository(store),
		employees:   memory.NewEmployeeRepository(store),
		sink:        &recordingSink{},
		now:         now,
	}
	h.leaves = leaveservice.NewLeaveService(memory.NewLeaveRequestRepository(store), h.employees, nil, wib)
	reports := reportservice.NewReportService(h.attendances, h.employees, wib, h.sink)

	h.jobs = NewAttendanceJobs(h.attendances, h.employees, h.leaves, reports, wib, time.Sunday)
	h.jobs.now = func() time.Time { return h.now }
	return h
}

func (h *harness) employee(t *testing.T, name string, role employee.Role) employee.Employee {
	t.Helper()
	e, err := h.employees.Create(context.Background(), employee.Employee{Name: name, Email: name + "@example.com", Role: role})
	require.NoError(t, err)
	return e
}

func (h *harness) today() time.Time {
	return utils.CalendarDay(h.now, wib)
}

func (h *harness) checkIn(t *testing.T, employeeID string, at time.Time) attendance.Attendance {
	t.Helper()
	a, err := h.attendances.Create(context.Background(), attendance.Attendance{
		EmployeeID:    employeeID,
		Date:          h.today(),
		CheckInStatus: attendance.CheckInOnTime,
		TimeIn:        &at,
	})
	require.NoError(t, err)
	return a
}

func (h *harness) approvedLeave(t *testing.T, employeeID, start, end string) {
	t.Helper()
	ctx := context.Background()
	req, err := h.leaves.CreateRequest(ctx, leave.CreateLeaveRequest{
		EmployeeID: employeeID, Type: "Annual", Reason: "Holiday", StartDate: start, EndDate: end,
	})
	require.NoError(t, err)
	_, err = h.leaves.ApproveRequest(ctx, leave.ReviewLeaveRequest{ID: req.ID})
	require.NoError(t, err)
}

func (h *harness) record(t *testing.T, employeeID string) *attendance.Attendance {
	t.Helper()
	a, err := h.attendances.GetByEmployeeAndDate(context.Background(), employeeID, h.today())
	require.NoError(t, err)
	return a
}

func TestBackfillAbsencesIsIdempotent(t *testing.T) {
	h := newHarness(t, wednesday)
	absent := h.employee(t, "absent", employee.RoleUser)
	present := h.employee(t, "present", employee.RoleUser)
	admin := h.employee(t, "admin", employee.RoleAdmin)
	h.checkIn(t, present.ID, time.Date(2024, 5, 1, 8, 0, 0, 0, wib))

	first, err := h.jobs.BackfillAbsences(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Created)
	assert.Equal(t, 1, first.Skipped)

	before, err := h.attendances.List(context.Background(), attendance.AttendanceFilter{})
	require.NoError(t, err)

	second, err := h.jobs.BackfillAbsences(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 2, second.Skipped)

	after, err := h.attendances.List(context.Background(), attendance.AttendanceFilter{})
	require.NoError(t, err)
	assert.Equal(t, before, after)

	rec := h.record(t, absent.ID)
	require.NotNil(t, rec)
	assert.Equal(t, attendance.CheckInAbsent, rec.CheckInStatus)
	require.NotNil(t, rec.CheckOutStatus)
	assert.Equal(t, attendance.CheckOutAbsent, *rec.CheckOutStatus)
	assert.Nil(t, rec.TimeIn)
	assert.Nil(t, rec.TimeOut)

	assert.Equal(t, attendance.CheckInOnTime, h.record(t, present.ID).CheckInStatus)
	assert.Nil(t, h.record(t, admin.ID), "only role user is reconciled")
}

func TestBackfillPrefersLeave(t *testing.T) {
	h := newHarness(t, wednesday)
	b := h.employee(t, "b", employee.RoleUser)
	h.approvedLeave(t, b.ID, "2024-04-30", "2024-05-02")

	result, err := h.jobs.BackfillAbsences(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.OnLeave)

	rec := h.record(t, b.ID)
	require.NotNil(t, rec)
	assert.Equal(t, attendance.CheckInOnLeave, rec.CheckInStatus)
	assert.Equal(t, attendance.CheckOutOnLeave, *rec.CheckOutStatus)
	assert.Nil(t, rec.TimeIn)
	assert.Nil(t, rec.TimeOut)
}

// staleReads hides today's record from the first existence check, the way a
// check-in committed between the backfill's read and its insert would.
type staleReads struct {
	attendance.AttendanceRepository
	mu     sync.Mutex
	hidden map[string]bool
}

func (s *staleReads) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	s.mu.Lock()
	hide := s.hidden[employeeID]
	delete(s.hidden, employeeID)
	s.mu.Unlock()
	if hide {
		return nil, nil
	}
	return s.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, date)
}

func TestBackfillLosesRaceToCheckIn(t *testing.T) {
	h := newHarness(t, wednesday)
	late := h.employee(t, "late", employee.RoleUser)
	checkedIn := h.checkIn(t, late.ID, time.Date(2024, 5, 1, 16, 59, 0, 0, wib))

	h.jobs.attendanceRepo = &staleReads{AttendanceRepository: h.attendances, hidden: map[string]bool{late.ID: true}}

	result, err := h.jobs.BackfillAbsences(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 0, result.Failed)

	rec := h.record(t, late.ID)
	require.NotNil(t, rec)
	assert.Equal(t, checkedIn.ID, rec.ID)
	assert.Equal(t, attendance.CheckInOnTime, rec.CheckInStatus, "the live check-in is never overwritten")
}

func TestConcurrentBackfillCreatesOneRecordEach(t *testing.T) {
	h := newHarness(t, wednesday)
	for _, name := range []string{"a", "b", "c", "d"} {
		h.employee(t, name, employee.RoleUser)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.jobs.BackfillAbsences(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	all, err := h.attendances.List(context.Background(), attendance.AttendanceFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

type panickyIndex struct {
	leave.WindowIndex
	employeeID string
}

func (p panickyIndex) IsOnLeave(ctx context.Context, employeeID string, day time.Time) (bool, error) {
	if employeeID == p.employeeID {
		panic("leave store exploded")
	}
	return p.WindowIndex.IsOnLeave(ctx, employeeID, day)
}

type failingIndex struct {
	employeeID string
	leave.WindowIndex
}

func (f failingIndex) IsOnLeave(ctx context.Context, employeeID string, day time.Time) (bool, error) {
	if employeeID == f.employeeID {
		return false, errors.New("connection reset")
	}
	return f.WindowIndex.IsOnLeave(ctx, employeeID, day)
}

func TestBackfillIsolatesEmployeeFailures(t *testing.T) {
	h := newHarness(t, wednesday)
	broken := h.employee(t, "broken", employee.RoleUser)
	flaky := h.employee(t, "flaky", employee.RoleUser)
	fine := h.employee(t, "fine", employee.RoleUser)

	h.jobs.leaveIndex = panickyIndex{WindowIndex: failingIndex{employeeID: flaky.ID, WindowIndex: h.leaves}, employeeID: broken.ID}

	result, err := h.jobs.BackfillAbsences(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, 1, result.Created)

	assert.Nil(t, h.record(t, broken.ID))
	assert.Nil(t, h.record(t, flaky.ID))
	assert.NotNil(t, h.record(t, fine.ID))
}

func TestSweepMissedCheckouts(t *testing.T) {
	h := newHarness(t, time.Date(2024, 5, 1, 19, 0, 0, 0, wib))
	c := h.employee(t, "c", employee.RoleUser)
	done := h.employee(t, "done", employee.RoleUser)
	away := h.employee(t, "away", employee.RoleUser)
	boss := h.employee(t, "boss", employee.RoleManager)

	h.checkIn(t, c.ID, time.Date(2024, 5, 1, 8, 0, 0, 0, wib))

	finished := h.checkIn(t, done.ID, time.Date(2024, 5, 1, 8, 0, 0, 0, wib))
	out := time.Date(2024, 5, 1, 17, 0, 0, 0, wib)
	checkedOut := attendance.CheckOutCheckedOut
	finished.TimeOut, finished.CheckOutStatus = &out, &checkedOut
	ok, err := h.attendances.CompleteCheckout(context.Background(), finished)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = h.attendances.Create(context.Background(), attendance.NonWorkingRecord(away.ID, h.today(), false))
	require.NoError(t, err)

	h.checkIn(t, boss.ID, time.Date(2024, 5, 1, 8, 0, 0, 0, wib))

	first, err := h.jobs.SweepMissedCheckouts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Marked)

	rec := h.record(t, c.ID)
	require.NotNil(t, rec.CheckOutStatus)
	assert.Equal(t, attendance.CheckOutMissed, *rec.CheckOutStatus)
	assert.Nil(t, rec.TimeOut)

	assert.Equal(t, attendance.CheckOutCheckedOut, *h.record(t, done.ID).CheckOutStatus)
	assert.Equal(t, attendance.CheckOutAbsent, *h.record(t, away.ID).CheckOutStatus)
	assert.Nil(t, h.record(t, boss.ID).CheckOutStatus)

	second, err := h.jobs.SweepMissedCheckouts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Marked)
	assert.Equal(t, attendance.CheckOutMissed, *h.record(t, c.ID).CheckOutStatus)
}

func TestRestDaySkipsEverything(t *testing.T) {
	sunday := time.Date(2024, 5, 5, 17, 0, 0, 0, wib)
	h := newHarness(t, sunday)
	e := h.employee(t, "e", employee.RoleUser)

	backfill, err := h.jobs.BackfillAbsences(context.Background())
	require.NoError(t, err)
	assert.True(t, backfill.RestDay)

	sweep, err := h.jobs.SweepMissedCheckouts(context.Background())
	require.NoError(t, err)
	assert.True(t, sweep.RestDay)

	require.NoError(t, h.jobs.DispatchDailyReport(context.Background()))

	assert.Nil(t, h.record(t, e.ID))
	assert.Empty(t, h.sink.reports)

	result, err := h.jobs.RunReconciliation(context.Background())
	require.NoError(t, err)
	assert.True(t, result.RestDay)
	assert.Equal(t, "2024-05-05", result.Date)
}

func TestRestDayUsesConfiguredZone(t *testing.T) {
	// Saturday 20:00 UTC is already Sunday 03:00 in WIB.
	h := newHarness(t, time.Date(2024, 5, 4, 20, 0, 0, 0, time.UTC))
	h.employee(t, "e", employee.RoleUser)

	result, err := h.jobs.BackfillAbsences(context.Background())
	require.NoError(t, err)
	assert.True(t, result.RestDay)
}

func TestRunReconciliationInOrder(t *testing.T) {
	h := newHarness(t, time.Date(2024, 5, 1, 19, 30, 0, 0, wib))
	h.sink.err = errors.New("telegram down")

	absent := h.employee(t, "absent", employee.RoleUser)
	forgetful := h.employee(t, "forgetful", employee.RoleUser)
	h.checkIn(t, forgetful.ID, time.Date(2024, 5, 1, 8, 0, 0, 0, wib))

	result, err := h.jobs.RunReconciliation(context.Background())
	require.NoError(t, err, "sink failures are not job failures")
	assert.Equal(t, "2024-05-01", result.Date)
	assert.Equal(t, 1, result.Backfill.Created)
	assert.Equal(t, 1, result.Sweep.Marked)
	assert.True(t, result.Reported)

	require.Len(t, h.sink.reports, 1)
	r := h.sink.reports[0]
	assert.Equal(t, 2, r.TotalAttendance)
	require.Len(t, r.AbsentEmployees, 1)
	assert.Equal(t, absent.ID, r.AbsentEmployees[0].EmployeeID)
	require.Len(t, r.MissedCheckOut, 1)
	assert.Equal(t, forgetful.ID, r.MissedCheckOut[0].EmployeeID)
}

type failingReports struct {
	report.ReportService
}

func (failingReports) Dispatch(context.Context, time.Time) error {
	return errors.New("database unavailable")
}

func TestDispatchDailyReportFailure(t *testing.T) {
	h := newHarness(t, wednesday)
	h.jobs.reportSvc = failingReports{}

	err := h.jobs.DispatchDailyReport(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database unavailable")
}

func TestRegisterJobs(t *testing.T) {
	h := newHarness(t, wednesday)
	scheduler := NewScheduler()
	h.jobs.RegisterJobs(scheduler, DailySchedule{
		BackfillAt: ClockTime{Hour: 17},
		SweepAt:    ClockTime{Hour: 19},
		ReportAt:   ClockTime{Hour: 19, Minute: 30},
	})

	jobs := scheduler.Jobs()
	require.Len(t, jobs, 3)
	assert.Equal(t, "backfill_absences", jobs[0].Name)
	assert.Equal(t, "sweep_missed_checkouts", jobs[1].Name)
	assert.Equal(t, "dispatch_daily_report", jobs[2].Name)
	assert.Equal(t, ClockTime{Hour: 19, Minute: 30}, *jobs[2].Daily)

	e := h.employee(t, "e", employee.RoleUser)
	scheduler.RunOnce(context.Background())
	rec := h.record(t, e.ID)
	require.NotNil(t, rec)
	assert.Equal(t, attendance.CheckInAbsent, rec.CheckInStatus)
	assert.Len(t, h.sink.reports, 1)
}
