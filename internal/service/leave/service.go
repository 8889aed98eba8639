package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
)

const expiredComment = "Automatically rejected: the leave period ended before review"

type LeaveServiceImpl struct {
	leave.LeaveRequestRepository
	employee.EmployeeRepository
	tx  database.Transactor
	loc *time.Location
}

// IsOnLeave implements leave.WindowIndex. The day is widened to
// [00:00:00.000, 23:59:59.999] in the configured zone before the overlap test.
func (l *LeaveServiceImpl) IsOnLeave(ctx context.Context, employeeID string, day time.Time) (bool, error) {
	local := utils.InZone(day, l.loc)
	onLeave, err := l.LeaveRequestRepository.HasApprovedOverlap(ctx, employeeID, utils.StartOfDay(local, l.loc), utils.EndOfDay(local, l.loc))
	if err != nil {
		return false, fmt.Errorf("failed to check approved leave: %w", err)
	}
	return onLeave, nil
}

// CreateRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) CreateRequest(ctx context.Context, req leave.CreateLeaveRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	emp, err := l.EmployeeRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	start, _ := utils.ParseDateKey(req.StartDate)
	end, _ := utils.ParseDateKey(req.EndDate)

	created, err := l.LeaveRequestRepository.Create(ctx, leave.LeaveRequest{
		EmployeeID: emp.ID,
		Type:       req.Type,
		Reason:     req.Reason,
		StartDate:  utils.InZone(start, l.loc),
		EndDate:    utils.InZone(end, l.loc),
		Status:     leave.StatusPending,
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to create leave request: %w", err)
	}
	created.EmployeeName = &emp.Name

	return l.toResponse(created), nil
}

// GetRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) GetRequest(ctx context.Context, id string) (leave.LeaveRequestResponse, error) {
	req, err := l.LeaveRequestRepository.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	return l.toResponse(req), nil
}

// ListRequests implements leave.LeaveService.
func (l *LeaveServiceImpl) ListRequests(ctx context.Context, filter leave.ListLeaveRequestFilter) ([]leave.LeaveRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	repoFilter := leave.LeaveRequestFilter{EmployeeID: filter.EmployeeID}
	if filter.Status != nil {
		status := leave.Status(*filter.Status)
		repoFilter.Status = &status
	}

	requests, err := l.LeaveRequestRepository.List(ctx, repoFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}

	responses := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, l.toResponse(r))
	}
	return responses, nil
}

// ApproveRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) ApproveRequest(ctx context.Context, req leave.ReviewLeaveRequest) (leave.LeaveRequestResponse, error) {
	return l.review(ctx, req, leave.StatusApproved)
}

// RejectRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) RejectRequest(ctx context.Context, req leave.ReviewLeaveRequest) (leave.LeaveRequestResponse, error) {
	return l.review(ctx, req, leave.StatusRejected)
}

func (l *LeaveServiceImpl) review(ctx context.Context, req leave.ReviewLeaveRequest, status leave.Status) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	var reviewed leave.LeaveRequest
	err := l.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		current, err := l.LeaveRequestRepository.GetByID(txCtx, req.ID)
		if err != nil {
			return err
		}
		if current.Status != leave.StatusPending {
			return leave.ErrLeaveRequestAlreadyProcessed
		}

		changed, err := l.LeaveRequestRepository.Review(txCtx, req.ID, status, req.ReviewerID, req.Comment)
		if err != nil {
			return fmt.Errorf("failed to review leave request: %w", err)
		}
		if !changed {
			// A concurrent reviewer got there first.
			return leave.ErrLeaveRequestAlreadyProcessed
		}

		reviewed, err = l.LeaveRequestRepository.GetByID(txCtx, req.ID)
		return err
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	return l.toResponse(reviewed), nil
}

// RejectExpired implements leave.LeaveService.
func (l *LeaveServiceImpl) RejectExpired(ctx context.Context, now time.Time) (int64, error) {
	cutoff := utils.StartOfDay(now, l.loc)
	count, err := l.LeaveRequestRepository.RejectPendingEndedBefore(ctx, cutoff, expiredComment)
	if err != nil {
		return 0, fmt.Errorf("failed to reject expired leave requests: %w", err)
	}
	return count, nil
}

// toResponse renders the inclusive span in the configured zone so a
// request created for 2024-05-01 reads back as that day.
func (l *LeaveServiceImpl) toResponse(r leave.LeaveRequest) leave.LeaveRequestResponse {
	r.StartDate = r.StartDate.In(l.loc)
	r.EndDate = r.EndDate.In(l.loc)
	return leave.ToResponse(r)
}

func NewLeaveService(
	leaveRequestRepo leave.LeaveRequestRepository,
	employeeRepo employee.EmployeeRepository,
	tx database.Transactor,
	loc *time.Location,
) leave.LeaveService {
	if tx == nil {
		tx = database.NoopTransactor{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &LeaveServiceImpl{
		LeaveRequestRepository: leaveRequestRepo,
		EmployeeRepository:     employeeRepo,
		tx:                     tx,
		loc:                    loc,
	}
}

