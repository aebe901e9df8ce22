package company

import "errors"

var (
	ErrCompanyNotFound = errors.New("company not found")
	ErrInvalidTimezone = errors.New("company timezone is not a valid IANA zone")
)
