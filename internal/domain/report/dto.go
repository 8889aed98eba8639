package report

import (
	"strconv"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

type DailyReportQuery struct {
	Date *string
}

// Parse returns the requested day, or nil when no date was given.
func (q DailyReportQuery) Parse() (*time.Time, error) {
	if q.Date == nil || validator.IsEmpty(*q.Date) {
		return nil, nil
	}
	day, ok := validator.IsValidDate(*q.Date)
	if !ok {
		return nil, validator.ValidationErrors{{Field: "date", Message: ErrInvalidDate.Error()}}
	}
	return &day, nil
}

type MonthlyReportQuery struct {
	Year  string
	Month string
}

func (q MonthlyReportQuery) Parse() (int, time.Month, error) {
	var errs validator.ValidationErrors

	year, err := strconv.Atoi(q.Year)
	if err != nil || year < 2000 || year > 9999 {
		errs = append(errs, validator.ValidationError{Field: "year", Message: ErrInvalidYear.Error()})
	}

	month, err := strconv.Atoi(q.Month)
	if err != nil || month < 1 || month > 12 {
		errs = append(errs, validator.ValidationError{Field: "month", Message: ErrInvalidMonth.Error()})
	}

	if len(errs) > 0 {
		return 0, 0, errs
	}
	return year, time.Month(month), nil
}
