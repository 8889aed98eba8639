package attendance

import (
	"context"
	"time"
)

// AttendanceFilter narrows List. Zero values mean "no constraint".
type AttendanceFilter struct {
	EmployeeID *string
	Date       *time.Time
	From       *time.Time
	To         *time.Time
}

// AttendanceRepository defines data access methods for attendance records.
// Implementations enforce uniqueness of (employee_id, date) and make the
// checkout writes conditional so that concurrent writers cannot clobber each other.
type AttendanceRepository interface {
	// Create inserts a new record. Returns ErrDuplicateAttendance when a record
	// for the same employee and date already exists.
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	// GetByID returns ErrAttendanceNotFound when no record matches.
	GetByID(ctx context.Context, id string) (Attendance, error)

	// GetByEmployeeAndDate returns (nil, nil) when no record exists.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Attendance, error)

	// List returns records ordered by date descending, then time_in.
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, error)

	// ListOpenByDate returns working records of the day without a time_out
	// and not yet marked Missed Check-out.
	ListOpenByDate(ctx context.Context, date time.Time) ([]Attendance, error)

	// CompleteCheckout writes the checkout fields only while time_out is still
	// null. Returns false when another writer got there first.
	CompleteCheckout(ctx context.Context, attendance Attendance) (bool, error)

	// MarkMissedCheckout sets check_out_status to Missed Check-out on a working
	// record with no time_out. Returns false when nothing changed.
	MarkMissedCheckout(ctx context.Context, id string) (bool, error)

	Delete(ctx context.Context, id string) error
}
