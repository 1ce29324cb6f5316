package payroll

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

func renderBankCSV(rows []BankRow) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"employee_code", "first_name", "last_name", "bank_name", "account_number", "routing_number", "amount", "currency"}
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	for _, row := range rows {
		record := []string{
			row.EmployeeCode,
			row.FirstName,
			row.LastName,
			row.BankName,
			row.AccountNumber,
			row.RoutingNumber,
			fmt.Sprintf("%.2f", row.NetSalary),
			row.Currency,
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
