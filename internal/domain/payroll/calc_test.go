package payroll

import (
	"math"
	"testing"
	"time"
)

var testRates = Rates{
	DefaultTaxRate:         0.2,
	SocialSecurityRate:     0.062,
	HealthInsurancePremium: 200,
	RetirementRate:         0.05,
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestResolveDeductionsDefaults(t *testing.T) {
	profile := EmployeeProfile{
		BaseSalary:      5000,
		HealthInsurance: true,
		RetirementPlan:  true,
	}

	d := ResolveDeductions(testRates, profile, 5000, DeductionInput{})

	if !almostEqual(d.Tax, 1000) {
		t.Fatalf("tax = %v, want 1000", d.Tax)
	}
	if !almostEqual(d.SocialSecurity, 310) {
		t.Fatalf("social security = %v, want 310", d.SocialSecurity)
	}
	if !almostEqual(d.HealthInsurance, 200) {
		t.Fatalf("health insurance = %v, want 200", d.HealthInsurance)
	}
	if !almostEqual(d.RetirementContribution, 250) {
		t.Fatalf("retirement = %v, want 250", d.RetirementContribution)
	}
	if !almostEqual(d.TotalDeductions, 1760) {
		t.Fatalf("total deductions = %v, want 1760", d.TotalDeductions)
	}
}

func TestResolveDeductionsEmployeeTaxRate(t *testing.T) {
	rate := 0.3
	profile := EmployeeProfile{BaseSalary: 4000, TaxRate: &rate}

	d := ResolveDeductions(testRates, profile, 4000, DeductionInput{})

	if !almostEqual(d.Tax, 1200) {
		t.Fatalf("tax = %v, want 1200", d.Tax)
	}
	// Social security ignores the individual tax rate.
	if !almostEqual(d.SocialSecurity, 248) {
		t.Fatalf("social security = %v, want 248", d.SocialSecurity)
	}
	if !almostEqual(d.HealthInsurance, 0) {
		t.Fatalf("health insurance = %v, want 0 for unenrolled employee", d.HealthInsurance)
	}
	if !almostEqual(d.RetirementContribution, 0) {
		t.Fatalf("retirement = %v, want 0 for unenrolled employee", d.RetirementContribution)
	}
}

func TestResolveDeductionsExplicitZeroOverrideSticks(t *testing.T) {
	profile := EmployeeProfile{
		BaseSalary:      5000,
		HealthInsurance: true,
		RetirementPlan:  true,
	}
	zero := 0.0

	d := ResolveDeductions(testRates, profile, 5000, DeductionInput{
		Tax:             &zero,
		HealthInsurance: &zero,
	})

	if d.Tax != 0 {
		t.Fatalf("tax = %v, want explicit 0 to stick", d.Tax)
	}
	if d.HealthInsurance != 0 {
		t.Fatalf("health insurance = %v, want explicit 0 to stick", d.HealthInsurance)
	}
	// Non-overridden fields still compute.
	if !almostEqual(d.SocialSecurity, 310) {
		t.Fatalf("social security = %v, want 310", d.SocialSecurity)
	}
	if !almostEqual(d.RetirementContribution, 250) {
		t.Fatalf("retirement = %v, want 250", d.RetirementContribution)
	}
	if !almostEqual(d.TotalDeductions, 560) {
		t.Fatalf("total deductions = %v, want 560", d.TotalDeductions)
	}
}

func TestResolveDeductionsOtherDeductions(t *testing.T) {
	other := 75.0
	d := ResolveDeductions(testRates, EmployeeProfile{}, 1000, DeductionInput{OtherDeductions: &other})

	if !almostEqual(d.OtherDeductions, 75) {
		t.Fatalf("other deductions = %v, want 75", d.OtherDeductions)
	}
	if !almostEqual(d.TotalDeductions, 200+62+75) {
		t.Fatalf("total deductions = %v, want 337", d.TotalDeductions)
	}
}

func TestBuildRecord(t *testing.T) {
	profile := EmployeeProfile{
		ID:              "emp-1",
		BaseSalary:      5000,
		HealthInsurance: true,
		RetirementPlan:  true,
	}
	period := PayPeriod{Month: 3, Year: 2025}

	rec := BuildRecord(testRates, profile, period, EarningsInput{
		BaseSalary: 5000,
		Overtime:   300,
		Bonus:      200,
	}, DeductionInput{})

	if rec.Status != StatusPending {
		t.Fatalf("status = %q, want %q", rec.Status, StatusPending)
	}
	if rec.EmployeeID != "emp-1" {
		t.Fatalf("employee id = %q, want emp-1", rec.EmployeeID)
	}
	if !almostEqual(rec.Earnings.TotalEarnings, 5500) {
		t.Fatalf("total earnings = %v, want 5500", rec.Earnings.TotalEarnings)
	}
	if !almostEqual(rec.Deductions.TotalDeductions, 1760) {
		t.Fatalf("total deductions = %v, want 1760", rec.Deductions.TotalDeductions)
	}
	if !almostEqual(rec.NetSalary, 3740) {
		t.Fatalf("net salary = %v, want 3740", rec.NetSalary)
	}
}

func TestBuildRecordNegativeNetNotClamped(t *testing.T) {
	tax := 2000.0
	rec := BuildRecord(testRates, EmployeeProfile{}, PayPeriod{Month: 1, Year: 2025}, EarningsInput{
		BaseSalary: 1000,
	}, DeductionInput{Tax: &tax})

	if rec.NetSalary >= 0 {
		t.Fatalf("net salary = %v, want negative and unclamped", rec.NetSalary)
	}
	if !almostEqual(rec.NetSalary, 1000-(2000+62)) {
		t.Fatalf("net salary = %v, want -1062", rec.NetSalary)
	}
}

func TestPeriodDates(t *testing.T) {
	tests := []struct {
		name      string
		frequency string
		wantEnd   time.Time
	}{
		{"monthly covers calendar month", "Monthly", time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)},
		{"weekly spans seven days", "Weekly", time.Date(2025, 2, 7, 0, 0, 0, 0, time.UTC)},
		{"biweekly spans fourteen days", "Bi-weekly", time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC)},
		{"unknown falls back to monthly", "Quarterly", time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			start, end := PeriodDates(2, 2025, tc.frequency)
			wantStart := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
			if !start.Equal(wantStart) {
				t.Fatalf("start = %v, want %v", start, wantStart)
			}
			if !end.Equal(tc.wantEnd) {
				t.Fatalf("end = %v, want %v", end, tc.wantEnd)
			}
		})
	}
}

func TestPeriodDatesLeapYear(t *testing.T) {
	_, end := PeriodDates(2, 2024, "Monthly")
	want := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	if !end.Equal(want) {
		t.Fatalf("end = %v, want %v", end, want)
	}
}

func TestOvertimePay(t *testing.T) {
	if got := OvertimePay(10, 20); !almostEqual(got, 300) {
		t.Fatalf("overtime pay = %v, want 300", got)
	}
	if got := OvertimePay(0, 50); got != 0 {
		t.Fatalf("overtime pay = %v, want 0", got)
	}
}

func TestBreakdownFromMonthly(t *testing.T) {
	b := BreakdownFromMonthly(1000)
	if b.Quarterly != 3000 || b.SemiAnnual != 6000 || b.Annual != 12000 {
		t.Fatalf("breakdown = %+v, want 3000/6000/12000", b)
	}
}

func TestLocked(t *testing.T) {
	for _, status := range []string{StatusApproved, StatusPaid} {
		if !Locked(status) {
			t.Fatalf("Locked(%q) = false, want true", status)
		}
	}
	for _, status := range []string{StatusDraft, StatusPending, StatusRejected} {
		if Locked(status) {
			t.Fatalf("Locked(%q) = true, want false", status)
		}
	}
}
