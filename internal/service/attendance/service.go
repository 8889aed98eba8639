package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/qrcode"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/geocode"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/iprange"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	employee.EmployeeRepository
	qrcode.QRCodeRepository
	notifier notification.Service
	geocoder geocode.Reverser
	hub      *sse.Hub
	loc      *time.Location
	now      func() time.Time
}

// CheckIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := a.now()
	today := utils.CalendarDay(now, a.loc)

	existing, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, req.EmployeeID, today)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to check today's attendance: %w", err)
	}
	if existing != nil {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedIn
	}

	emp, err := a.EmployeeRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	qr, err := a.QRCodeRepository.GetByID(ctx, req.QRCodeID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if !iprange.Contains(req.ClientIP, qr.IPRanges()) {
		return attendance.AttendanceResponse{}, &attendance.NetworkDeniedError{WifiNames: qr.WifiNames()}
	}

	record := attendance.Attendance{
		EmployeeID:    req.EmployeeID,
		Date:          today,
		CheckInStatus: attendance.CheckInStatus(req.Status),
		TimeIn:        req.TimeIn,
		QRCodeID:      &qr.ID,
	}
	if record.CheckInStatus == attendance.CheckInLate {
		record.CheckInLateDuration = req.LateDuration
	}

	created, err := a.AttendanceRepository.Create(ctx, record)
	if err != nil {
		if errors.Is(err, attendance.ErrDuplicateAttendance) {
			// Someone else (a concurrent request or the backfill) won the insert.
			winner, readErr := a.AttendanceRepository.GetByEmployeeAndDate(ctx, req.EmployeeID, today)
			if readErr != nil {
				return attendance.AttendanceResponse{}, fmt.Errorf("failed to read conflicting attendance: %w", readErr)
			}
			if winner != nil {
				slog.Info("Check-in lost insert race", "employee_id", req.EmployeeID, "existing_status", winner.CheckInStatus)
			}
			return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	a.announce(ctx, "check_in", created, checkInMessage(created, emp, now, a.loc))

	return attendance.ToResponse(created), nil
}

// CheckOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := a.now()
	today := utils.CalendarDay(now, a.loc)

	record, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, req.EmployeeID, today)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if record == nil {
		return attendance.AttendanceResponse{}, attendance.ErrAttendanceNotFound
	}
	if record.IsNonWorking() {
		return attendance.AttendanceResponse{}, attendance.ErrNotCheckedIn
	}
	if record.HasCheckedOut() {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedOut
	}

	emp, err := a.EmployeeRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	qr, err := a.QRCodeRepository.GetByID(ctx, req.QRCodeID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	updated := *record
	updated.IsRemoteCheckout = false
	updated.Location = nil

	if !iprange.Contains(req.ClientIP, qr.IPRanges()) {
		if !emp.IsAllowedRemoteCheckout {
			return attendance.AttendanceResponse{}, &attendance.NetworkDeniedError{WifiNames: qr.WifiNames()}
		}
		updated.IsRemoteCheckout = true
		updated.Location = a.resolveLocation(ctx, req)
	}

	timeOut := now
	if req.TimeOut != nil {
		timeOut = *req.TimeOut
	}
	updated.TimeOut = &timeOut

	// A checkout after the sweep replaces Missed Check-out: that status
	// requires time_out to stay null.
	switch {
	case req.Status != "":
		status := attendance.CheckOutStatus(req.Status)
		updated.CheckOutStatus = &status
	case updated.CheckOutStatus == nil || *updated.CheckOutStatus == attendance.CheckOutMissed:
		status := attendance.CheckOutCheckedOut
		updated.CheckOutStatus = &status
	}
	if updated.CheckOutStatus != nil && *updated.CheckOutStatus == attendance.CheckOutEarly {
		updated.CheckOutEarlyDuration = req.EarlyDuration
	}

	ok, err := a.AttendanceRepository.CompleteCheckout(ctx, updated)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to complete checkout: %w", err)
	}
	if !ok {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedOut
	}

	saved, err := a.AttendanceRepository.GetByID(ctx, record.ID)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to reload attendance: %w", err)
	}

	a.announce(ctx, "check_out", saved, checkOutMessage(saved, emp, now, a.loc))

	return attendance.ToResponse(saved), nil
}

// resolveLocation reverse-geocodes the client position; failures only cost the label.
func (a *AttendanceServiceImpl) resolveLocation(ctx context.Context, req attendance.CheckOutRequest) *string {
	if a.geocoder == nil || req.Latitude == nil || req.Longitude == nil {
		return nil
	}

	name, err := a.geocoder.Reverse(ctx, *req.Latitude, *req.Longitude)
	if err != nil {
		slog.Warn("Reverse geocoding failed", "employee_id", req.EmployeeID, "error", err)
		return nil
	}
	return utils.StringPtr(name)
}

// announce pushes the change to the live feed and queues the chat message.
// Neither may fail the transition that already happened.
func (a *AttendanceServiceImpl) announce(ctx context.Context, event string, record attendance.Attendance, text string) {
	if a.hub != nil {
		a.hub.Publish(sse.Event{Stream: record.EmployeeID, Event: event, Data: attendance.ToResponse(record)})
	}
	if a.notifier == nil {
		return
	}
	if err := a.notifier.Notify(ctx, notification.TopicAttendance, text); err != nil {
		slog.Warn("Failed to queue attendance notification", "event", event, "attendance_id", record.ID, "error", err)
	}
}

// GetToday implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetToday(ctx context.Context, employeeID string) (attendance.AttendanceResponse, error) {
	record, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, utils.CalendarDay(a.now(), a.loc))
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if record == nil {
		return attendance.AttendanceResponse{}, attendance.ErrAttendanceNotFound
	}
	return attendance.ToResponse(*record), nil
}

// GetAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetAttendance(ctx context.Context, id string) (attendance.AttendanceResponse, error) {
	record, err := a.AttendanceRepository.GetByID(ctx, id)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return attendance.ToResponse(record), nil
}

// ListAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.ListAttendanceFilter) ([]attendance.AttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	repoFilter := attendance.AttendanceFilter{EmployeeID: filter.EmployeeID}
	if filter.Date != nil {
		day, err := utils.ParseDateKey(*filter.Date)
		if err != nil {
			return nil, err
		}
		repoFilter.Date = &day
	}

	records, err := a.AttendanceRepository.List(ctx, repoFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, attendance.ToResponse(r))
	}
	return responses, nil
}

// DeleteAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) DeleteAttendance(ctx context.Context, id string) error {
	return a.AttendanceRepository.Delete(ctx, id)
}

// Config carries the clock and zone the service derives "today" from.
type Config struct {
	Location *time.Location
	Now      func() time.Time
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	qrCodeRepo qrcode.QRCodeRepository,
	notifier notification.Service,
	geocoder geocode.Reverser,
	hub *sse.Hub,
	cfg Config,
) attendance.AttendanceService {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		EmployeeRepository:   employeeRepo,
		QRCodeRepository:     qrCodeRepo,
		notifier:             notifier,
		geocoder:             geocoder,
		hub:                  hub,
		loc:                  cfg.Location,
		now:                  cfg.Now,
	}
}
