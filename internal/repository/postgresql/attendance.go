package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `
	id, employee_id, date, check_in_status, check_out_status,
	time_in, time_out, check_in_late_duration, check_out_early_duration,
	qr_code_id, location, is_remote_checkout, created_at, updated_at
`

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var (
		att      attendance.Attendance
		checkIn  string
		checkOut *string
	)
	err := row.Scan(
		&att.ID, &att.EmployeeID, &att.Date, &checkIn, &checkOut,
		&att.TimeIn, &att.TimeOut, &att.CheckInLateDuration, &att.CheckOutEarlyDuration,
		&att.QRCodeID, &att.Location, &att.IsRemoteCheckout, &att.CreatedAt, &att.UpdatedAt,
	)
	if err != nil {
		return attendance.Attendance{}, err
	}
	att.CheckInStatus = attendance.CheckInStatus(checkIn)
	if checkOut != nil {
		s := attendance.CheckOutStatus(*checkOut)
		att.CheckOutStatus = &s
	}
	return att, nil
}

func checkOutParam(s *attendance.CheckOutStatus) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	// ON CONFLICT DO NOTHING keeps the loser of a race from aborting an
	// enclosing transaction; no returned row means the key was taken.
	query := `
		INSERT INTO attendances (
			employee_id, date, check_in_status, check_out_status,
			time_in, time_out, check_in_late_duration, check_out_early_duration,
			qr_code_id, location, is_remote_checkout
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
		ON CONFLICT (employee_id, date) DO NOTHING
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		newAttendance.EmployeeID,
		newAttendance.Date,
		string(newAttendance.CheckInStatus),
		checkOutParam(newAttendance.CheckOutStatus),
		newAttendance.TimeIn,
		newAttendance.TimeOut,
		newAttendance.CheckInLateDuration,
		newAttendance.CheckOutEarlyDuration,
		newAttendance.QRCodeID,
		newAttendance.Location,
		newAttendance.IsRemoteCheckout,
	).Scan(&newAttendance.ID, &newAttendance.CreatedAt, &newAttendance.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isUniqueViolation(err) {
			return attendance.Attendance{}, attendance.ErrDuplicateAttendance
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return newAttendance, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendances WHERE id = $1`

	att, err := scanAttendance(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by id: %w", err)
	}
	return att, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendances WHERE employee_id = $1 AND date = $2 LIMIT 1`

	att, err := scanAttendance(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance by employee and date: %w", err)
	}
	return &att, nil
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	var (
		where []string
		args  []interface{}
	)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if filter.EmployeeID != nil {
		add("employee_id = $%d", *filter.EmployeeID)
	}
	if filter.Date != nil {
		add("date = $%d", *filter.Date)
	}
	if filter.From != nil {
		add("date >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("date <= $%d", *filter.To)
	}

	query := `SELECT ` + attendanceColumns + ` FROM attendances`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date DESC, time_in ASC NULLS LAST, created_at ASC"

	return a.queryList(ctx, q, query, args...)
}

// ListOpenByDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListOpenByDate(ctx context.Context, date time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE date = $1
		  AND time_out IS NULL
		  AND check_in_status NOT IN ('Absent', 'On Leave')
		  AND check_out_status IS DISTINCT FROM 'Missed Check-out'
		ORDER BY created_at ASC
	`
	return a.queryList(ctx, q, query, date)
}

func (a *attendanceRepository) queryList(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]attendance.Attendance, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances: %w", err)
	}
	defer rows.Close()

	var result []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		result = append(result, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendances: %w", err)
	}
	return result, nil
}

// CompleteCheckout implements attendance.AttendanceRepository.
func (a *attendanceRepository) CompleteCheckout(ctx context.Context, att attendance.Attendance) (bool, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances
		SET time_out = $2,
			check_out_status = $3,
			check_out_early_duration = $4,
			location = $5,
			is_remote_checkout = $6,
			updated_at = NOW()
		WHERE id = $1 AND time_out IS NULL
	`

	tag, err := q.Exec(ctx, query,
		att.ID,
		att.TimeOut,
		checkOutParam(att.CheckOutStatus),
		att.CheckOutEarlyDuration,
		att.Location,
		att.IsRemoteCheckout,
	)
	if err != nil {
		return false, fmt.Errorf("failed to complete checkout: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkMissedCheckout implements attendance.AttendanceRepository.
func (a *attendanceRepository) MarkMissedCheckout(ctx context.Context, id string) (bool, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances
		SET check_out_status = 'Missed Check-out', updated_at = NOW()
		WHERE id = $1
		  AND time_out IS NULL
		  AND check_in_status NOT IN ('Absent', 'On Leave')
		  AND check_out_status IS DISTINCT FROM 'Missed Check-out'
	`

	tag, err := q.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to mark missed checkout: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Delete implements attendance.AttendanceRepository.
func (a *attendanceRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, a.db)

	tag, err := q.Exec(ctx, `DELETE FROM attendances WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}
