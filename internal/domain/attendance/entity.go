package attendance

import (
	"time"
)

type CheckInStatus string

const (
	CheckInOnTime  CheckInStatus = "On Time"
	CheckInLate    CheckInStatus = "Late"
	CheckInAbsent  CheckInStatus = "Absent"
	CheckInOnLeave CheckInStatus = "On Leave"
)

type CheckOutStatus string

const (
	CheckOutCheckedOut CheckOutStatus = "Checked Out"
	CheckOutEarly      CheckOutStatus = "Early Check-out"
	CheckOutMissed     CheckOutStatus = "Missed Check-out"
	CheckOutAbsent     CheckOutStatus = "Absent"
	CheckOutOnLeave    CheckOutStatus = "On Leave"
)

// Attendance is the single record of an employee for one calendar day.
// Date holds the calendar day as midnight UTC (see utils.CalendarDay).
type Attendance struct {
	ID                    string
	EmployeeID            string
	Date                  time.Time
	CheckInStatus         CheckInStatus
	CheckOutStatus        *CheckOutStatus
	TimeIn                *time.Time
	TimeOut               *time.Time
	CheckInLateDuration   *string
	CheckOutEarlyDuration *string
	QRCodeID              *string
	Location              *string
	IsRemoteCheckout      bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// IsNonWorking reports whether the record was produced for an absence or a leave day.
func (a Attendance) IsNonWorking() bool {
	return a.CheckInStatus == CheckInAbsent || a.CheckInStatus == CheckInOnLeave
}

// HasCheckedOut reports whether time_out has been written.
func (a Attendance) HasCheckedOut() bool {
	return a.TimeOut != nil
}

// NeedsMissedCheckout reports whether the sweep should mark the record.
func (a Attendance) NeedsMissedCheckout() bool {
	if a.IsNonWorking() || a.TimeOut != nil {
		return false
	}
	return a.CheckOutStatus == nil || *a.CheckOutStatus != CheckOutMissed
}

// NonWorkingRecord builds the backfill record for an employee who never checked in.
func NonWorkingRecord(employeeID string, day time.Time, onLeave bool) Attendance {
	in, out := CheckInAbsent, CheckOutAbsent
	if onLeave {
		in, out = CheckInOnLeave, CheckOutOnLeave
	}
	return Attendance{
		EmployeeID:     employeeID,
		Date:           day,
		CheckInStatus:  in,
		CheckOutStatus: &out,
	}
}
