package report

import "errors"

var (
	ErrInvalidMonth = errors.New("month must be between 1 and 12")
	ErrInvalidYear  = errors.New("year must be a valid year")
	ErrInvalidDate  = errors.New("date must be in YYYY-MM-DD format")
)
