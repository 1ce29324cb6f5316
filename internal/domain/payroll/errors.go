package payroll

import "errors"

var (
	ErrPayrollNotFound  = errors.New("payroll not found")
	ErrPayrollExists    = errors.New("payroll already exists for this employee and period")
	ErrPayrollLocked    = errors.New("approved or paid payroll cannot be modified")
	ErrNotPending       = errors.New("only pending payrolls can be approved or rejected")
	ErrNotApproved      = errors.New("only approved payrolls can be marked as paid")
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrEmployeeInactive = errors.New("employee is not active")
	ErrInvalidInput     = errors.New("invalid payroll input")
)
