package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/google/uuid"
)

type leaveRequestRepository struct {
	store *Store
}

func NewLeaveRequestRepository(store *Store) leave.LeaveRequestRepository {
	return &leaveRequestRepository{store: store}
}

// withName fills the employee name the way the SQL store joins it. Caller holds the lock.
func (r *leaveRequestRepository) withName(lr leave.LeaveRequest) leave.LeaveRequest {
	if emp, ok := r.store.employees[lr.EmployeeID]; ok {
		name := emp.Name
		lr.EmployeeName = &name
	}
	return lr
}

func (r *leaveRequestRepository) Create(ctx context.Context, req leave.LeaveRequest) (leave.LeaveRequest, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	req.ID = uuid.NewString()
	req.CreatedAt, req.UpdatedAt = now, now
	s.leaveRequests[req.ID] = req
	return req, nil
}

func (r *leaveRequestRepository) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	lr, ok := s.leaveRequests[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return r.withName(lr), nil
}

func (r *leaveRequestRepository) List(ctx context.Context, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []leave.LeaveRequest
	for _, lr := range s.leaveRequests {
		if filter.EmployeeID != nil && lr.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && lr.Status != *filter.Status {
			continue
		}
		result = append(result, r.withName(lr))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *leaveRequestRepository) HasApprovedOverlap(ctx context.Context, employeeID string, windowStart, windowEnd time.Time) (bool, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, lr := range s.leaveRequests {
		if lr.EmployeeID == employeeID && lr.CoversWindow(windowStart, windowEnd) {
			return true, nil
		}
	}
	return false, nil
}

func (r *leaveRequestRepository) Review(ctx context.Context, id string, status leave.Status, reviewerID *string, comment *string) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	lr, ok := s.leaveRequests[id]
	if !ok {
		return false, leave.ErrLeaveRequestNotFound
	}
	if lr.Status != leave.StatusPending {
		return false, nil
	}

	lr.Status = status
	lr.ReviewedBy = reviewerID
	lr.Comment = comment
	lr.UpdatedAt = time.Now().UTC()
	s.leaveRequests[id] = lr
	return true, nil
}

func (r *leaveRequestRepository) RejectPendingEndedBefore(ctx context.Context, cutoff time.Time, comment string) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, lr := range s.leaveRequests {
		if lr.Status != leave.StatusPending || !lr.EndDate.Before(cutoff) {
			continue
		}
		c := comment
		lr.Status = leave.StatusRejected
		lr.Comment = &c
		lr.UpdatedAt = time.Now().UTC()
		s.leaveRequests[id] = lr
		n++
	}
	return n, nil
}
