package attendance

import (
	"errors"
	"fmt"
	"strings"
)

// Attendance domain errors
var (
	// Check-in errors
	ErrAlreadyCheckedIn = errors.New("you have already checked in for the day")
	ErrNetworkDenied    = errors.New("access denied: not connected to an allowed network")

	// Check-out errors
	ErrAlreadyCheckedOut = errors.New("you have already checked out for the day")
	ErrNotCheckedIn      = errors.New("no check-in recorded for the day")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")

	// ErrDuplicateAttendance is returned by stores when (employee, date) already exists.
	ErrDuplicateAttendance = errors.New("attendance record already exists for employee and date")
)

// NetworkDeniedError carries the Wi-Fi names the client should connect to.
type NetworkDeniedError struct {
	WifiNames []string
}

func (e *NetworkDeniedError) Error() string {
	return fmt.Sprintf("Access denied. You must be connected to the correct Wi-Fi network (%s)!", strings.Join(e.WifiNames, ", "))
}

func (e *NetworkDeniedError) Is(target error) bool {
	return target == ErrNetworkDenied
}
