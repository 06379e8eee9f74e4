package employee

import "errors"

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrEmployeeInactive = errors.New("employee is not active")
	ErrInvalidRole      = errors.New("employee role must be one of: operator, supervisor, packer, technician, forklift_driver")
)
