package report

import (
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
)

type Category string

const (
	CategoryLate           Category = "late"
	CategoryEarlyCheckOut  Category = "early_check_out"
	CategoryMissedCheckOut Category = "missed_check_out"
	CategoryAbsent         Category = "absent"
	CategoryOnLeave        Category = "on_leave"
	CategoryOnTime         Category = "on_time"
	CategoryCheckedOut     Category = "normal_checked_out"
	CategoryUnclassified   Category = "unclassified"
)

// Classify assigns a record to exactly one category. The order of checks is a
// fixed tie-break: a Late record that later checks out normally stays Late.
func Classify(a attendance.Attendance) Category {
	checkOut := attendance.CheckOutStatus("")
	if a.CheckOutStatus != nil {
		checkOut = *a.CheckOutStatus
	}

	switch {
	case a.CheckInStatus == attendance.CheckInLate:
		return CategoryLate
	case checkOut == attendance.CheckOutEarly:
		return CategoryEarlyCheckOut
	case checkOut == attendance.CheckOutMissed:
		return CategoryMissedCheckOut
	case a.CheckInStatus == attendance.CheckInAbsent:
		return CategoryAbsent
	case a.CheckInStatus == attendance.CheckInOnLeave:
		return CategoryOnLeave
	case a.CheckInStatus == attendance.CheckInOnTime:
		return CategoryOnTime
	case checkOut == attendance.CheckOutCheckedOut:
		return CategoryCheckedOut
	default:
		return CategoryUnclassified
	}
}

// Entry is one employee line of a report category.
type Entry struct {
	AttendanceID string     `json:"attendance_id"`
	EmployeeID   string     `json:"employee_id"`
	EmployeeName string     `json:"employee_name"`
	Duration     *string    `json:"duration,omitempty"`
	Time         *time.Time `json:"time,omitempty"`
}

// DailyReport partitions the records of a day (or of all days when ReportDate is nil).
type DailyReport struct {
	ReportDate             *time.Time `json:"report_date"`
	TotalAttendance        int        `json:"total_attendance"`
	LateEmployees          []Entry    `json:"late_employees"`
	EarlyCheckOutEmployees []Entry    `json:"early_check_out_employees"`
	MissedCheckOut         []Entry    `json:"missed_check_out_employees"`
	AbsentEmployees        []Entry    `json:"absent_employees"`
	OnLeaveEmployees       []Entry    `json:"on_leave_employees"`
	OnTimeEmployees        []Entry    `json:"on_time_employees"`
	CheckedOutEmployees    []Entry    `json:"normal_checked_out_employees"`
	Unclassified           []Entry    `json:"unclassified,omitempty"`
}

// Counts returns the size of every category.
func (r DailyReport) Counts() map[Category]int {
	return map[Category]int{
		CategoryLate:           len(r.LateEmployees),
		CategoryEarlyCheckOut:  len(r.EarlyCheckOutEmployees),
		CategoryMissedCheckOut: len(r.MissedCheckOut),
		CategoryAbsent:         len(r.AbsentEmployees),
		CategoryOnLeave:        len(r.OnLeaveEmployees),
		CategoryOnTime:         len(r.OnTimeEmployees),
		CategoryCheckedOut:     len(r.CheckedOutEmployees),
		CategoryUnclassified:   len(r.Unclassified),
	}
}

// MonthlySummary counts the categories of one employee over a month.
type MonthlySummary struct {
	EmployeeID     string `json:"employee_id"`
	EmployeeName   string `json:"employee_name"`
	Late           int    `json:"late"`
	EarlyCheckOut  int    `json:"early_check_out"`
	MissedCheckOut int    `json:"missed_check_out"`
	Absent         int    `json:"absent"`
	OnLeave        int    `json:"on_leave"`
	OnTime         int    `json:"on_time"`
	CheckedOut     int    `json:"normal_checked_out"`
	Unclassified   int    `json:"unclassified"`
	Total          int    `json:"total"`
}

// Add counts one record in its category.
func (s *MonthlySummary) Add(c Category) {
	switch c {
	case CategoryLate:
		s.Late++
	case CategoryEarlyCheckOut:
		s.EarlyCheckOut++
	case CategoryMissedCheckOut:
		s.MissedCheckOut++
	case CategoryAbsent:
		s.Absent++
	case CategoryOnLeave:
		s.OnLeave++
	case CategoryOnTime:
		s.OnTime++
	case CategoryCheckedOut:
		s.CheckedOut++
	default:
		s.Unclassified++
	}
	s.Total++
}

type MonthlyReport struct {
	Year      int              `json:"year"`
	Month     int              `json:"month"`
	Employees []MonthlySummary `json:"employees"`
}
