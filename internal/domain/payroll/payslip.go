package payroll

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// RenderPayslipPDF produces the payslip document for one record. The
// caller is expected to hand in an approved or paid record; rendering
// itself does not care about status.
func RenderPayslipPDF(rec Record, profile EmployeeProfile) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s %s (%s)", profile.FirstName, profile.LastName, profile.Code))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Email: %s", profile.Email))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %02d/%d (%s to %s)",
		rec.Period.Month, rec.Period.Year,
		rec.Period.StartDate.Format("2006-01-02"), rec.Period.EndDate.Format("2006-01-02")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Earnings")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 11)
	writeAmount(pdf, "Base Salary", rec.Earnings.BaseSalary, profile.Currency)
	writeAmount(pdf, "Overtime", rec.Earnings.Overtime, profile.Currency)
	writeAmount(pdf, "Bonus", rec.Earnings.Bonus, profile.Currency)
	writeAmount(pdf, "Commission", rec.Earnings.Commission, profile.Currency)
	writeAmount(pdf, "Allowances", rec.Earnings.Allowances, profile.Currency)
	writeAmount(pdf, "Total Earnings", rec.Earnings.TotalEarnings, profile.Currency)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Deductions")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 11)
	writeAmount(pdf, "Tax", rec.Deductions.Tax, profile.Currency)
	writeAmount(pdf, "Social Security", rec.Deductions.SocialSecurity, profile.Currency)
	writeAmount(pdf, "Health Insurance", rec.Deductions.HealthInsurance, profile.Currency)
	writeAmount(pdf, "Retirement", rec.Deductions.RetirementContribution, profile.Currency)
	writeAmount(pdf, "Other", rec.Deductions.OtherDeductions, profile.Currency)
	writeAmount(pdf, "Total Deductions", rec.Deductions.TotalDeductions, profile.Currency)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	writeAmount(pdf, "Net Salary", rec.NetSalary, profile.Currency)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeAmount(pdf *gofpdf.Fpdf, label string, amount float64, currency string) {
	pdf.Cell(0, 7, fmt.Sprintf("%s: %.2f %s", label, amount, currency))
	pdf.Ln(6)
}
