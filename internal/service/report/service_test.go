package report

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func checkOut(s attendance.CheckOutStatus) *attendance.CheckOutStatus {
	return &s
}

func at(h, m int) *time.Time {
	t := time.Date(2024, 5, 1, h, m, 0, 0, time.UTC)
	return &t
}

func TestClassifyPrecedence(t *testing.T) {
	tests := []struct {
		name   string
		record attendance.Attendance
		want   report.Category
	}{
		{"late beats early", attendance.Attendance{CheckInStatus: attendance.CheckInLate, CheckOutStatus: checkOut(attendance.CheckOutEarly)}, report.CategoryLate},
		{"late beats missed", attendance.Attendance{CheckInStatus: attendance.CheckInLate, CheckOutStatus: checkOut(attendance.CheckOutMissed)}, report.CategoryLate},
		{"early beats on time", attendance.Attendance{CheckInStatus: attendance.CheckInOnTime, CheckOutStatus: checkOut(attendance.CheckOutEarly)}, report.CategoryEarlyCheckOut},
		{"missed beats on time", attendance.Attendance{CheckInStatus: attendance.CheckInOnTime, CheckOutStatus: checkOut(attendance.CheckOutMissed)}, report.CategoryMissedCheckOut},
		{"absent", attendance.Attendance{CheckInStatus: attendance.CheckInAbsent, CheckOutStatus: checkOut(attendance.CheckOutAbsent)}, report.CategoryAbsent},
		{"on leave", attendance.Attendance{CheckInStatus: attendance.CheckInOnLeave, CheckOutStatus: checkOut(attendance.CheckOutOnLeave)}, report.CategoryOnLeave},
		{"on time beats checked out", attendance.Attendance{CheckInStatus: attendance.CheckInOnTime, CheckOutStatus: checkOut(attendance.CheckOutCheckedOut)}, report.CategoryOnTime},
		{"on time still open", attendance.Attendance{CheckInStatus: attendance.CheckInOnTime}, report.CategoryOnTime},
		{"checked out without check-in status", attendance.Attendance{CheckOutStatus: checkOut(attendance.CheckOutCheckedOut)}, report.CategoryCheckedOut},
		{"nothing recognised", attendance.Attendance{CheckInStatus: "Unknown"}, report.CategoryUnclassified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, report.Classify(tt.record))
		})
	}
}

func TestAggregatePartitionsRecords(t *testing.T) {
	var records []attendance.Attendance
	add := func(n int, in attendance.CheckInStatus, out *attendance.CheckOutStatus) {
		for i := 0; i < n; i++ {
			records = append(records, attendance.Attendance{
				ID:             string(in) + string(rune('a'+i)),
				EmployeeID:     "emp",
				CheckInStatus:  in,
				CheckOutStatus: out,
				TimeOut:        at(17, 0),
			})
		}
	}
	add(3, attendance.CheckInLate, checkOut(attendance.CheckOutCheckedOut))
	add(2, attendance.CheckInAbsent, checkOut(attendance.CheckOutAbsent))
	add(1, attendance.CheckInOnLeave, checkOut(attendance.CheckOutOnLeave))
	// Four Checked Out entries contradict the precedence for real check-ins:
	// On Time + Checked Out counts as On Time. Only records without a
	// check-in status fall through to Checked Out.
	add(4, "", checkOut(attendance.CheckOutCheckedOut))

	r := Aggregate(nil, records, map[string]string{"emp": "Alice"})

	assert.Equal(t, 10, r.TotalAttendance)
	counts := r.Counts()
	assert.Equal(t, 3, counts[report.CategoryLate])
	assert.Equal(t, 2, counts[report.CategoryAbsent])
	assert.Equal(t, 1, counts[report.CategoryOnLeave])
	assert.Equal(t, 4, counts[report.CategoryCheckedOut])

	sum := 0
	for _, c := range counts {
		sum += c
	}
	assert.Equal(t, r.TotalAttendance, sum)
	assert.Equal(t, "Alice", r.LateEmployees[0].EmployeeName)
}

func TestAggregateEntries(t *testing.T) {
	late := "20 minutes"
	early := "1 hour"
	records := []attendance.Attendance{
		{EmployeeID: "a", CheckInStatus: attendance.CheckInLate, CheckInLateDuration: &late},
		{EmployeeID: "b", CheckInStatus: attendance.CheckInOnTime, TimeIn: at(8, 0), CheckOutStatus: checkOut(attendance.CheckOutEarly), CheckOutEarlyDuration: &early},
		{EmployeeID: "c", CheckInStatus: attendance.CheckInOnTime, TimeIn: at(7, 55)},
		{EmployeeID: "ghost", CheckInStatus: attendance.CheckInAbsent},
	}

	r := Aggregate(nil, records, map[string]string{"a": "Ana", "b": "Bayu", "c": "Citra"})

	require.Len(t, r.LateEmployees, 1)
	assert.Equal(t, &late, r.LateEmployees[0].Duration)
	require.Len(t, r.EarlyCheckOutEmployees, 1)
	assert.Equal(t, &early, r.EarlyCheckOutEmployees[0].Duration)
	require.Len(t, r.OnTimeEmployees, 1)
	assert.Equal(t, at(7, 55), r.OnTimeEmployees[0].Time)
	require.Len(t, r.AbsentEmployees, 1)
	assert.Equal(t, "ghost", r.AbsentEmployees[0].EmployeeName, "unknown employees fall back to their id")
	assert.Empty(t, r.Unclassified)
}

func TestFormatTelegram(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	late := "15 minutes"
	r := report.DailyReport{
		ReportDate:          &day,
		TotalAttendance:     2,
		LateEmployees:       []report.Entry{{EmployeeName: "Ana", Duration: &late}},
		CheckedOutEmployees: []report.Entry{{EmployeeName: "Bayu", Time: at(17, 30)}},
	}

	msg := FormatTelegram(r, time.UTC)

	assert.Contains(t, msg, "📅 *Attendance Report:* 1 May 2024")
	assert.Contains(t, msg, "👥 *Total Attendance:* 2")
	assert.Contains(t, msg, "⏰ *Late Employees:*\n- Ana (Late by 15 minutes)")
	assert.Contains(t, msg, "🏃‍♂️ *Early Check-out Employees:*\nNone")
	assert.Contains(t, msg, "✅ *Normal Checked Out Employees:*\n- Bayu (05:30:00 PM)")
	assert.Contains(t, msg, "⏳ *On Time Employees:*\nNone")
	assert.NotContains(t, msg, "Unclassified")
}

type fixture struct {
	svc         report.ReportService
	attendances attendance.AttendanceRepository
	employees   employee.EmployeeRepository
}

func newFixture(t *testing.T, sinks ...report.Sink) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		attendances: memory.NewAttendanceRepository(store),
		employees:   memory.NewEmployeeRepository(store),
	}
	f.svc = NewReportService(f.attendances, f.employees, time.UTC, sinks...)
	return f
}

func (f *fixture) employee(t *testing.T, name string, role employee.Role) employee.Employee {
	t.Helper()
	e, err := f.employees.Create(context.Background(), employee.Employee{Name: name, Email: name + "@example.com", Role: role})
	require.NoError(t, err)
	return e
}

func (f *fixture) record(t *testing.T, a attendance.Attendance) {
	t.Helper()
	_, err := f.attendances.Create(context.Background(), a)
	require.NoError(t, err)
}

func TestDailyReportFiltersByDate(t *testing.T) {
	f := newFixture(t)
	ana := f.employee(t, "Ana", employee.RoleUser)

	may1 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	may2 := may1.AddDate(0, 0, 1)
	f.record(t, attendance.Attendance{EmployeeID: ana.ID, Date: may1, CheckInStatus: attendance.CheckInOnTime, TimeIn: at(8, 0)})
	f.record(t, attendance.NonWorkingRecord(ana.ID, may2, false))

	r, err := f.svc.DailyReport(context.Background(), &may1)
	require.NoError(t, err)
	assert.Equal(t, 1, r.TotalAttendance)
	assert.Len(t, r.OnTimeEmployees, 1)

	all, err := f.svc.DailyReport(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, all.TotalAttendance)
	assert.Nil(t, all.ReportDate)
}

func TestMonthlyReportAndExport(t *testing.T) {
	f := newFixture(t)
	ana := f.employee(t, "Ana", employee.RoleUser)
	bayu := f.employee(t, "Bayu", employee.RoleUser)
	boss := f.employee(t, "Boss", employee.RoleAdmin)

	may := func(d int) time.Time { return time.Date(2024, 5, d, 0, 0, 0, 0, time.UTC) }
	f.record(t, attendance.Attendance{EmployeeID: ana.ID, Date: may(1), CheckInStatus: attendance.CheckInLate})
	f.record(t, attendance.Attendance{EmployeeID: ana.ID, Date: may(2), CheckInStatus: attendance.CheckInOnTime})
	f.record(t, attendance.NonWorkingRecord(ana.ID, may(3), true))
	f.record(t, attendance.NonWorkingRecord(ana.ID, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), false))
	f.record(t, attendance.Attendance{EmployeeID: boss.ID, Date: may(1), CheckInStatus: attendance.CheckInOnTime})

	monthly, err := f.svc.MonthlyReport(context.Background(), 2024, time.May)
	require.NoError(t, err)
	require.Len(t, monthly.Employees, 2, "only role user is summarised")

	assert.Equal(t, "Ana", monthly.Employees[0].EmployeeName)
	assert.Equal(t, 1, monthly.Employees[0].Late)
	assert.Equal(t, 1, monthly.Employees[0].OnTime)
	assert.Equal(t, 1, monthly.Employees[0].OnLeave)
	assert.Equal(t, 0, monthly.Employees[0].Absent)
	assert.Equal(t, 3, monthly.Employees[0].Total)
	assert.Equal(t, bayu.ID, monthly.Employees[1].EmployeeID)
	assert.Equal(t, 0, monthly.Employees[1].Total)

	data, err := f.svc.ExportMonthly(context.Background(), 2024, time.May)
	require.NoError(t, err)

	book, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer book.Close()

	name, err := book.GetCellValue("Attendance", "A5")
	require.NoError(t, err)
	assert.Equal(t, "Ana", name)
	total, err := book.GetCellValue("Attendance", "J5")
	require.NoError(t, err)
	assert.Equal(t, "3", total)

	_, err = f.svc.MonthlyReport(context.Background(), 2024, 13)
	assert.ErrorIs(t, err, report.ErrInvalidMonth)
}

type recordingSink struct {
	name string
	err  error
	mu   sync.Mutex
	got  []report.DailyReport
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Deliver(_ context.Context, r report.DailyReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, r)
	return s.err
}

func TestDispatchSwallowsSinkFailures(t *testing.T) {
	broken := &recordingSink{name: "broken", err: errors.New("smtp down")}
	healthy := &recordingSink{name: "healthy"}
	f := newFixture(t, broken, healthy)
	ana := f.employee(t, "Ana", employee.RoleUser)

	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	f.record(t, attendance.NonWorkingRecord(ana.ID, day, false))

	err := f.svc.Dispatch(context.Background(), time.Date(2024, 5, 1, 19, 30, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Len(t, healthy.got, 1)
	require.Len(t, broken.got, 1)
	assert.Equal(t, 1, healthy.got[0].TotalAttendance)
	assert.Equal(t, utils.DateKey(day), utils.DateKey(*healthy.got[0].ReportDate))
}

type captureTransport struct {
	msg notification.Message
}

func (c *captureTransport) Send(_ context.Context, msg notification.Message) error {
	c.msg = msg
	return nil
}

func TestTelegramSink(t *testing.T) {
	transport := &captureTransport{}
	sink := NewTelegramSink(transport, time.UTC)

	require.NoError(t, sink.Deliver(context.Background(), report.DailyReport{TotalAttendance: 0}))
	assert.Equal(t, "telegram", sink.Name())
	assert.Equal(t, notification.TopicReport, transport.msg.Topic)
	assert.Contains(t, transport.msg.Text, "*Attendance Report:* All records")
}
