package leave

import (
	"context"
	"time"
)

// WindowIndex answers whether an employee is on approved leave on a calendar day.
type WindowIndex interface {
	IsOnLeave(ctx context.Context, employeeID string, day time.Time) (bool, error)
}

type LeaveService interface {
	WindowIndex

	CreateRequest(ctx context.Context, req CreateLeaveRequest) (LeaveRequestResponse, error)
	GetRequest(ctx context.Context, id string) (LeaveRequestResponse, error)
	ListRequests(ctx context.Context, filter ListLeaveRequestFilter) ([]LeaveRequestResponse, error)
	ApproveRequest(ctx context.Context, req ReviewLeaveRequest) (LeaveRequestResponse, error)
	RejectRequest(ctx context.Context, req ReviewLeaveRequest) (LeaveRequestResponse, error)

	// RejectExpired rejects Pending requests whose end date is already over at now.
	RejectExpired(ctx context.Context, now time.Time) (int64, error)
}
