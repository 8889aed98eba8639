package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

const leaveRequestColumns = `
	lr.id, lr.employee_id, lr.type, lr.reason, lr.start_date, lr.end_date, lr.status,
	lr.comment, lr.reviewed_by, lr.created_at, lr.updated_at, e.name
`

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var (
		lr     leave.LeaveRequest
		status string
	)
	err := row.Scan(
		&lr.ID, &lr.EmployeeID, &lr.Type, &lr.Reason, &lr.StartDate, &lr.EndDate, &status,
		&lr.Comment, &lr.ReviewedBy, &lr.CreatedAt, &lr.UpdatedAt, &lr.EmployeeName,
	)
	lr.Status = leave.Status(status)
	return lr, err
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, req leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_requests (employee_id, type, reason, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := q.QueryRow(ctx, query,
		req.EmployeeID, req.Type, req.Reason, req.StartDate, req.EndDate, string(req.Status),
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}
	return req, nil
}

// GetByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveRequestColumns + `
		FROM leave_requests lr
		LEFT JOIN employees e ON e.id = lr.employee_id
		WHERE lr.id = $1
	`
	lr, err := scanLeaveRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request: %w", err)
	}
	return lr, nil
}

// List implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) List(ctx context.Context, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	var (
		where []string
		args  []interface{}
	)
	if filter.EmployeeID != nil {
		args = append(args, *filter.EmployeeID)
		where = append(where, fmt.Sprintf("lr.employee_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where = append(where, fmt.Sprintf("lr.status = $%d", len(args)))
	}

	query := `SELECT ` + leaveRequestColumns + `
		FROM leave_requests lr
		LEFT JOIN employees e ON e.id = lr.employee_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY lr.created_at DESC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	defer rows.Close()

	var result []leave.LeaveRequest
	for rows.Next() {
		lr, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		result = append(result, lr)
	}
	return result, rows.Err()
}

// HasApprovedOverlap implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) HasApprovedOverlap(ctx context.Context, employeeID string, windowStart, windowEnd time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM leave_requests
			WHERE employee_id = $1
			  AND status = 'Approved'
			  AND start_date <= $2
			  AND end_date >= $3
		)
	`
	var exists bool
	if err := q.QueryRow(ctx, query, employeeID, windowEnd, windowStart).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check approved leave: %w", err)
	}
	return exists, nil
}

// Review implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Review(ctx context.Context, id string, status leave.Status, reviewerID *string, comment *string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET status = $2, reviewed_by = $3, comment = $4, updated_at = NOW()
		WHERE id = $1 AND status = 'Pending'
	`
	tag, err := q.Exec(ctx, query, id, string(status), reviewerID, comment)
	if err != nil {
		return false, fmt.Errorf("failed to review leave request: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// RejectPendingEndedBefore implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) RejectPendingEndedBefore(ctx context.Context, cutoff time.Time, comment string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET status = 'Rejected', comment = $2, updated_at = NOW()
		WHERE status = 'Pending' AND end_date < $1
	`
	tag, err := q.Exec(ctx, query, cutoff, comment)
	if err != nil {
		return 0, fmt.Errorf("failed to reject expired leave requests: %w", err)
	}
	return tag.RowsAffected(), nil
}
