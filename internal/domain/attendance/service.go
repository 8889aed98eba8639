package attendance

import (
	"context"
)

// AttendanceService defines the live check-in/check-out transitions and record views.
type AttendanceService interface {
	// CheckIn creates today's record after the network-location check.
	CheckIn(ctx context.Context, req CheckInRequest) (AttendanceResponse, error)

	// CheckOut completes today's record, remotely when the employee is allowed to.
	CheckOut(ctx context.Context, req CheckOutRequest) (AttendanceResponse, error)

	// GetToday returns the caller's record for the current day.
	GetToday(ctx context.Context, employeeID string) (AttendanceResponse, error)

	GetAttendance(ctx context.Context, id string) (AttendanceResponse, error)
	ListAttendance(ctx context.Context, filter ListAttendanceFilter) ([]AttendanceResponse, error)

	// DeleteAttendance removes a record (administrative correction).
	DeleteAttendance(ctx context.Context, id string) error
}
