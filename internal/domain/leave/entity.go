package leave

import "time"

type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

// LeaveRequest covers the inclusive calendar span [StartDate, EndDate].
type LeaveRequest struct {
	ID         string
	EmployeeID string
	Type       string
	Reason     string
	StartDate  time.Time
	EndDate    time.Time
	Status     Status
	Comment    *string
	ReviewedBy *string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// DTO
	EmployeeName *string
}

// CoversWindow reports whether an approved request overlaps [dayStart, dayEnd].
func (r LeaveRequest) CoversWindow(dayStart, dayEnd time.Time) bool {
	return r.Status == StatusApproved && !r.StartDate.After(dayEnd) && !r.EndDate.Before(dayStart)
}
