package leave

import (
	"context"
	"time"
)

type LeaveRequestFilter struct {
	EmployeeID *string
	Status     *Status
}

type LeaveRequestRepository interface {
	Create(ctx context.Context, req LeaveRequest) (LeaveRequest, error)

	// GetByID returns ErrLeaveRequestNotFound when no request matches.
	GetByID(ctx context.Context, id string) (LeaveRequest, error)

	List(ctx context.Context, filter LeaveRequestFilter) ([]LeaveRequest, error)

	// HasApprovedOverlap reports whether an Approved request of the employee
	// satisfies start_date <= windowEnd AND end_date >= windowStart.
	HasApprovedOverlap(ctx context.Context, employeeID string, windowStart, windowEnd time.Time) (bool, error)

	// Review moves a Pending request to status. Returns false when the request
	// is no longer Pending.
	Review(ctx context.Context, id string, status Status, reviewerID *string, comment *string) (bool, error)

	// RejectPendingEndedBefore rejects every Pending request whose end_date is before cutoff.
	RejectPendingEndedBefore(ctx context.Context, cutoff time.Time, comment string) (int64, error)
}
