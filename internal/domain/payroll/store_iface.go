package payroll

import (
	"context"
	"time"
)

// StoreAPI is the persistence contract the payroll service relies on.
// Uniqueness of (employee, month, year) and lifecycle compare-and-set
// are enforced here, not in application code: Insert must fail with
// ErrPayrollExists on a duplicate key even under concurrent creates,
// and the transition methods must only apply from the expected status.
type StoreAPI interface {
	EmployeeProfile(ctx context.Context, employeeID string) (EmployeeProfile, error)
	Insert(ctx context.Context, rec Record) (Record, error)
	FindByID(ctx context.Context, id string) (Record, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]Record, int, error)
	Update(ctx context.Context, rec Record) (Record, error)
	Approve(ctx context.Context, id, approverID, notes string, at time.Time) (Record, error)
	Reject(ctx context.Context, id, notes string) (Record, error)
	MarkPaid(ctx context.Context, id string, at time.Time) (Record, error)
	SetPayslipGenerated(ctx context.Context, id string) error
	YTDTotals(ctx context.Context, employeeID string, year int) (YTDTotals, error)
	ApprovedForPeriod(ctx context.Context, month, year int) ([]BankRow, error)
}
