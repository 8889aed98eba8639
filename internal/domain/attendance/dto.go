package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type CheckInRequest struct {
	EmployeeID   string     `json:"employee" validate:"required"`
	QRCodeID     string     `json:"qr_code" validate:"required"`
	Status       string     `json:"check_in_status" validate:"required,oneof='On Time' Late"`
	LateDuration *string    `json:"checkInLateDuration"`
	TimeIn       *time.Time `json:"time_in" validate:"required"`
	ClientIP     string     `json:"-"`
}

func (r *CheckInRequest) Validate() error {
	errs := validator.Struct(r)

	if validator.IsEmpty(r.ClientIP) {
		errs = append(errs, validator.ValidationError{
			Field:   "client_ip",
			Message: "client address could not be determined",
		})
	}

	if CheckInStatus(r.Status) == CheckInLate && (r.LateDuration == nil || validator.IsEmpty(*r.LateDuration)) {
		errs = append(errs, validator.ValidationError{
			Field:   "checkInLateDuration",
			Message: "checkInLateDuration is required when check_in_status is Late",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type CheckOutRequest struct {
	EmployeeID    string     `json:"employee" validate:"required"`
	QRCodeID      string     `json:"qr_code" validate:"required"`
	Status        string     `json:"check_out_status" validate:"omitempty,oneof='Checked Out' 'Early Check-out'"`
	EarlyDuration *string    `json:"checkOutEarlyDuration"`
	TimeOut       *time.Time `json:"time_out"`
	Latitude      *float64   `json:"lat" validate:"omitempty,latitude"`
	Longitude     *float64   `json:"lon" validate:"omitempty,longitude"`
	ClientIP      string     `json:"-"`
}

func (r *CheckOutRequest) Validate() error {
	errs := validator.Struct(r)

	if validator.IsEmpty(r.ClientIP) {
		errs = append(errs, validator.ValidationError{
			Field:   "client_ip",
			Message: "client address could not be determined",
		})
	}

	if CheckOutStatus(r.Status) == CheckOutEarly && (r.EarlyDuration == nil || validator.IsEmpty(*r.EarlyDuration)) {
		errs = append(errs, validator.ValidationError{
			Field:   "checkOutEarlyDuration",
			Message: "checkOutEarlyDuration is required when check_out_status is Early Check-out",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type AttendanceResponse struct {
	ID                    string  `json:"id"`
	EmployeeID            string  `json:"employee"`
	Date                  string  `json:"date"`
	CheckInStatus         string  `json:"check_in_status"`
	CheckOutStatus        *string `json:"check_out_status"`
	TimeIn                *string `json:"time_in"`
	TimeOut               *string `json:"time_out"`
	CheckInLateDuration   *string `json:"checkInLateDuration,omitempty"`
	CheckOutEarlyDuration *string `json:"checkOutEarlyDuration,omitempty"`
	QRCodeID              *string `json:"qr_code"`
	Location              *string `json:"location,omitempty"`
	IsRemoteCheckout      bool    `json:"isRemoteCheckout"`
	CreatedAt             string  `json:"created_at"`
	UpdatedAt             string  `json:"updated_at"`
}

// ToResponse converts the entity into its API representation.
func ToResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:                    a.ID,
		EmployeeID:            a.EmployeeID,
		Date:                  a.Date.Format("2006-01-02"),
		CheckInStatus:         string(a.CheckInStatus),
		TimeIn:                formatTime(a.TimeIn),
		TimeOut:               formatTime(a.TimeOut),
		CheckInLateDuration:   a.CheckInLateDuration,
		CheckOutEarlyDuration: a.CheckOutEarlyDuration,
		QRCodeID:              a.QRCodeID,
		Location:              a.Location,
		IsRemoteCheckout:      a.IsRemoteCheckout,
		CreatedAt:             a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:             a.UpdatedAt.Format(time.RFC3339),
	}
	if a.CheckOutStatus != nil {
		s := string(*a.CheckOutStatus)
		resp.CheckOutStatus = &s
	}
	return resp
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

type ListAttendanceFilter struct {
	EmployeeID *string
	Date       *string
}

func (f *ListAttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Date != nil {
		if _, ok := validator.IsValidDate(*f.Date); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}
