package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
)

type LeaveJobs struct {
	leaveSvc leave.LeaveService
	loc      *time.Location
	now      func() time.Time
}

func NewLeaveJobs(leaveSvc leave.LeaveService, loc *time.Location) *LeaveJobs {
	return &LeaveJobs{leaveSvc: leaveSvc, loc: loc, now: time.Now}
}

func (j *LeaveJobs) RegisterJobs(scheduler *Scheduler, at ClockTime) {
	scheduler.AddDailyJob("reject_expired_leave_requests", at, j.loc, j.RejectExpiredLeaveRequests)
}

// RejectExpiredLeaveRequests rejects pending requests whose period is already over.
func (j *LeaveJobs) RejectExpiredLeaveRequests(ctx context.Context) error {
	slog.Info("Cron: Starting expired leave request rejection")

	count, err := j.leaveSvc.RejectExpired(ctx, j.now())
	if err != nil {
		return fmt.Errorf("failed to reject expired leave requests: %w", err)
	}

	slog.Info("Cron: Expired leave requests rejected", "count", count)
	return nil
}
