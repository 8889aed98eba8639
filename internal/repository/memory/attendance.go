package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
	"github.com/google/uuid"
)

type attendanceRepository struct {
	store *Store
}

func NewAttendanceRepository(store *Store) attendance.AttendanceRepository {
	return &attendanceRepository{store: store}
}

func attendanceKey(employeeID string, date time.Time) string {
	return employeeID + "|" + utils.DateKey(date)
}

func (r *attendanceRepository) Create(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	key := attendanceKey(att.EmployeeID, att.Date)
	if _, exists := s.attendanceKey[key]; exists {
		return attendance.Attendance{}, attendance.ErrDuplicateAttendance
	}

	now := time.Now().UTC()
	att.ID = uuid.NewString()
	att.CreatedAt, att.UpdatedAt = now, now

	s.attendances[att.ID] = att
	s.attendanceKey[key] = att.ID
	return att, nil
}

func (r *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	att, ok := s.attendances[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return att, nil
}

func (r *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.attendanceKey[attendanceKey(employeeID, date)]
	if !ok {
		return nil, nil
	}
	att := s.attendances[id]
	return &att, nil
}

func (r *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []attendance.Attendance
	for _, att := range s.attendances {
		if filter.EmployeeID != nil && att.EmployeeID != *filter.EmployeeID {
			continue
		}
		day := utils.DateKey(att.Date)
		if filter.Date != nil && day != utils.DateKey(*filter.Date) {
			continue
		}
		if filter.From != nil && day < utils.DateKey(*filter.From) {
			continue
		}
		if filter.To != nil && day > utils.DateKey(*filter.To) {
			continue
		}
		result = append(result, att)
	}

	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if (a.TimeIn == nil) != (b.TimeIn == nil) {
			return a.TimeIn != nil
		}
		if a.TimeIn != nil && !a.TimeIn.Equal(*b.TimeIn) {
			return a.TimeIn.Before(*b.TimeIn)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return result, nil
}

func (r *attendanceRepository) ListOpenByDate(ctx context.Context, date time.Time) ([]attendance.Attendance, error) {
	all, err := r.List(ctx, attendance.AttendanceFilter{Date: &date})
	if err != nil {
		return nil, err
	}

	var open []attendance.Attendance
	for _, att := range all {
		if att.NeedsMissedCheckout() {
			open = append(open, att)
		}
	}
	return open, nil
}

func (r *attendanceRepository) CompleteCheckout(ctx context.Context, att attendance.Attendance) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.attendances[att.ID]
	if !ok {
		return false, attendance.ErrAttendanceNotFound
	}
	if current.TimeOut != nil {
		return false, nil
	}

	current.TimeOut = att.TimeOut
	current.CheckOutStatus = att.CheckOutStatus
	current.CheckOutEarlyDuration = att.CheckOutEarlyDuration
	current.Location = att.Location
	current.IsRemoteCheckout = att.IsRemoteCheckout
	current.UpdatedAt = time.Now().UTC()
	s.attendances[att.ID] = current
	return true, nil
}

func (r *attendanceRepository) MarkMissedCheckout(ctx context.Context, id string) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.attendances[id]
	if !ok {
		return false, attendance.ErrAttendanceNotFound
	}
	if !current.NeedsMissedCheckout() {
		return false, nil
	}

	missed := attendance.CheckOutMissed
	current.CheckOutStatus = &missed
	current.UpdatedAt = time.Now().UTC()
	s.attendances[id] = current
	return true, nil
}

func (r *attendanceRepository) Delete(ctx context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	att, ok := s.attendances[id]
	if !ok {
		return attendance.ErrAttendanceNotFound
	}
	delete(s.attendances, id)
	delete(s.attendanceKey, attendanceKey(att.EmployeeID, att.Date))
	return nil
}
