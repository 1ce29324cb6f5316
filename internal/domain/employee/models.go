package employee

import "time"

type Department struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Employee struct {
	ID             string     `json:"id"`
	Code           string     `json:"employeeCode"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	Email          string     `json:"email"`
	DepartmentID   string     `json:"departmentId"`
	Position       string     `json:"position"`
	EmploymentType string     `json:"employmentType"`
	JoiningDate    time.Time  `json:"joiningDate"`
	BaseSalary     float64    `json:"baseSalary"`
	Currency       string     `json:"currency"`
	PayFrequency   string     `json:"payFrequency"`
	OvertimeRate   float64    `json:"overtimeRate"`
	TaxRate        *float64   `json:"taxRate,omitempty"`
	TaxExemptions  int        `json:"taxExemptions"`
	Benefits       Benefits   `json:"benefits"`
	Bank           BankInfo   `json:"bankDetails"`
	IsActive       bool       `json:"isActive"`
	TerminatedAt   *time.Time `json:"terminationDate,omitempty"`
	TerminationWhy string     `json:"terminationReason,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

type Benefits struct {
	HealthInsurance bool `json:"healthInsurance"`
	DentalInsurance bool `json:"dentalInsurance"`
	RetirementPlan  bool `json:"retirementPlan"`
	PaidTimeOff     int  `json:"paidTimeOff"`
}

type BankInfo struct {
	AccountNumber string `json:"accountNumber,omitempty"`
	BankName      string `json:"bankName,omitempty"`
	RoutingNumber string `json:"routingNumber,omitempty"`
}

const (
	FrequencyMonthly  = "Monthly"
	FrequencyBiweekly = "Bi-weekly"
	FrequencyWeekly   = "Weekly"
)

var EmploymentTypes = []string{
	"Permanent",
	"Full time Contractual",
	"Part time Contractual",
	"Daily Wages",
	"Visiting Faculty",
}
