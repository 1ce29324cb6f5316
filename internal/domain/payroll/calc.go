package payroll

import "time"

// Rates are the statutory constants the calculator applies. They come
// from configuration; see config.Rates.
type Rates struct {
	DefaultTaxRate         float64
	SocialSecurityRate     float64
	HealthInsurancePremium float64
	RetirementRate         float64
}

// ResolveDeductions fills every deduction field: the override wins when
// supplied, otherwise the default is computed from the employee's tax
// and benefits profile. Social security always uses the statutory rate
// regardless of the employee's tax rate.
func ResolveDeductions(rates Rates, profile EmployeeProfile, baseSalary float64, override DeductionInput) Deductions {
	taxRate := rates.DefaultTaxRate
	if profile.TaxRate != nil {
		taxRate = *profile.TaxRate
	}

	d := Deductions{
		Tax:            baseSalary * taxRate,
		SocialSecurity: baseSalary * rates.SocialSecurityRate,
	}
	if profile.HealthInsurance {
		d.HealthInsurance = rates.HealthInsurancePremium
	}
	if profile.RetirementPlan {
		d.RetirementContribution = baseSalary * rates.RetirementRate
	}

	if override.Tax != nil {
		d.Tax = *override.Tax
	}
	if override.SocialSecurity != nil {
		d.SocialSecurity = *override.SocialSecurity
	}
	if override.HealthInsurance != nil {
		d.HealthInsurance = *override.HealthInsurance
	}
	if override.RetirementContribution != nil {
		d.RetirementContribution = *override.RetirementContribution
	}
	if override.OtherDeductions != nil {
		d.OtherDeductions = *override.OtherDeductions
	}

	d.TotalDeductions = d.Tax + d.SocialSecurity + d.HealthInsurance + d.RetirementContribution + d.OtherDeductions
	return d
}

// BuildRecord computes a complete payroll record from caller earnings
// and resolver deductions. The result is Pending and unpersisted; net
// salary is not clamped and may be negative.
func BuildRecord(rates Rates, profile EmployeeProfile, period PayPeriod, earnings EarningsInput, override DeductionInput) Record {
	earn := Earnings{
		BaseSalary: earnings.BaseSalary,
		Overtime:   earnings.Overtime,
		Bonus:      earnings.Bonus,
		Commission: earnings.Commission,
		Allowances: earnings.Allowances,
	}
	earn.TotalEarnings = earn.BaseSalary + earn.Overtime + earn.Bonus + earn.Commission + earn.Allowances

	deductions := ResolveDeductions(rates, profile, earnings.BaseSalary, override)

	return Record{
		EmployeeID: profile.ID,
		Period:     period,
		Earnings:   earn,
		Deductions: deductions,
		NetSalary:  earn.TotalEarnings - deductions.TotalDeductions,
		Status:     StatusPending,
	}
}

// PeriodDates derives the start and end of a pay period from its month,
// year and the employee's pay frequency. Weekly and bi-weekly windows
// open on the first of the month; monthly covers the calendar month.
func PeriodDates(month, year int, frequency string) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	switch frequency {
	case "Weekly":
		return start, start.AddDate(0, 0, 6)
	case "Bi-weekly":
		return start, start.AddDate(0, 0, 13)
	default:
		return start, start.AddDate(0, 1, -1)
	}
}

// OvertimePay values overtime hours at time and a half.
func OvertimePay(overtimeHours, hourlyRate float64) float64 {
	return overtimeHours * hourlyRate * 1.5
}

func BreakdownFromMonthly(monthly float64) AnnualBreakdown {
	return AnnualBreakdown{
		Monthly:    monthly,
		Quarterly:  monthly * 3,
		SemiAnnual: monthly * 6,
		Annual:     monthly * 12,
	}
}
