package payroll

import "time"

// PayPeriod is the window one payroll record covers. It is embedded in
// the record and frozen once the record is approved.
type PayPeriod struct {
	Month     int       `json:"month"`
	Year      int       `json:"year"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

type Earnings struct {
	BaseSalary    float64 `json:"baseSalary"`
	Overtime      float64 `json:"overtime"`
	Bonus         float64 `json:"bonus"`
	Commission    float64 `json:"commission"`
	Allowances    float64 `json:"allowances"`
	TotalEarnings float64 `json:"totalEarnings"`
}

type Deductions struct {
	Tax                    float64 `json:"tax"`
	SocialSecurity         float64 `json:"socialSecurity"`
	HealthInsurance        float64 `json:"healthInsurance"`
	RetirementContribution float64 `json:"retirementContribution"`
	OtherDeductions        float64 `json:"otherDeductions"`
	TotalDeductions        float64 `json:"totalDeductions"`
}

// Record is one pay-period computation for one employee. NetSalary is
// TotalEarnings - TotalDeductions exactly and may go negative.
type Record struct {
	ID               string     `json:"id"`
	EmployeeID       string     `json:"employeeId"`
	Period           PayPeriod  `json:"payPeriod"`
	Earnings         Earnings   `json:"earnings"`
	Deductions       Deductions `json:"deductions"`
	NetSalary        float64    `json:"netSalary"`
	Status           string     `json:"status"`
	ApprovedBy       string     `json:"approvedBy,omitempty"`
	ApprovedAt       *time.Time `json:"approvedAt,omitempty"`
	PaidAt           *time.Time `json:"paidAt,omitempty"`
	PayslipGenerated bool       `json:"payslipGenerated"`
	Notes            string     `json:"notes,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// EmployeeProfile is the slice of employee data the calculator needs:
// compensation, tax and benefits. Owned by the employee domain,
// referenced here.
type EmployeeProfile struct {
	ID              string
	Code            string
	FirstName       string
	LastName        string
	Email           string
	BaseSalary      float64
	Currency        string
	PayFrequency    string
	TaxRate         *float64
	HealthInsurance bool
	RetirementPlan  bool
	BankAccount     string
	BankName        string
	BankRouting     string
	IsActive        bool
}

type EarningsInput struct {
	BaseSalary float64 `json:"baseSalary"`
	Overtime   float64 `json:"overtime"`
	Bonus      float64 `json:"bonus"`
	Commission float64 `json:"commission"`
	Allowances float64 `json:"allowances"`
}

// DeductionInput carries per-field overrides. A nil field means "not
// supplied, compute the default"; an explicit zero sticks.
type DeductionInput struct {
	Tax                    *float64 `json:"tax"`
	SocialSecurity         *float64 `json:"socialSecurity"`
	HealthInsurance        *float64 `json:"healthInsurance"`
	RetirementContribution *float64 `json:"retirementContribution"`
	OtherDeductions        *float64 `json:"otherDeductions"`
}

type Filter struct {
	EmployeeID string
	Month      int
	Year       int
	Status     string
}

type YTDTotals struct {
	Earnings   float64 `json:"earnings"`
	Deductions float64 `json:"deductions"`
	NetPay     float64 `json:"netPay"`
}

type AnnualBreakdown struct {
	Monthly    float64 `json:"monthly"`
	Quarterly  float64 `json:"quarterly"`
	SemiAnnual float64 `json:"semiAnnual"`
	Annual     float64 `json:"annual"`
}

// BankRow is one line of the bank-transfer export.
type BankRow struct {
	EmployeeCode  string
	FirstName     string
	LastName      string
	BankName      string
	AccountNumber string
	RoutingNumber string
	NetSalary     float64
	Currency      string
}
