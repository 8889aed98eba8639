package leave

import (
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

type CreateLeaveRequest struct {
	EmployeeID string `json:"employee" validate:"required"`
	Type       string `json:"type" validate:"required,max=50"`
	Reason     string `json:"reason" validate:"required,max=500"`
	StartDate  string `json:"start_date" validate:"required"`
	EndDate    string `json:"end_date" validate:"required"`
}

func (r *CreateLeaveRequest) Validate() error {
	errs := validator.Struct(r)

	start, startOK := validator.IsValidDate(r.StartDate)
	if r.StartDate != "" && !startOK {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}

	end, endOK := validator.IsValidDate(r.EndDate)
	if r.EndDate != "" && !endOK {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}

	if startOK && endOK && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: ErrInvalidDateRange.Error(),
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ReviewLeaveRequest struct {
	ID         string  `json:"-" validate:"required"`
	ReviewerID *string `json:"-"`
	Comment    *string `json:"comment" validate:"omitempty,max=500"`
}

func (r *ReviewLeaveRequest) Validate() error {
	if errs := validator.Struct(r); len(errs) > 0 {
		return errs
	}
	return nil
}

type LeaveRequestResponse struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee"`
	EmployeeName *string `json:"employee_name,omitempty"`
	Type         string  `json:"type"`
	Reason       string  `json:"reason"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	Status       string  `json:"status"`
	Comment      *string `json:"comment,omitempty"`
	ReviewedBy   *string `json:"reviewed_by,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

func ToResponse(r LeaveRequest) LeaveRequestResponse {
	return LeaveRequestResponse{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		EmployeeName: r.EmployeeName,
		Type:         r.Type,
		Reason:       r.Reason,
		StartDate:    r.StartDate.Format("2006-01-02"),
		EndDate:      r.EndDate.Format("2006-01-02"),
		Status:       string(r.Status),
		Comment:      r.Comment,
		ReviewedBy:   r.ReviewedBy,
		CreatedAt:    r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    r.UpdatedAt.Format(time.RFC3339),
	}
}

type ListLeaveRequestFilter struct {
	EmployeeID *string
	Status     *string
}

func (f *ListLeaveRequestFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil && !validator.IsInSlice(*f.Status, []string{string(StatusPending), string(StatusApproved), string(StatusRejected)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: Pending, Approved, Rejected",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}
