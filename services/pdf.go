package services

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/tenantvolt/backend/models"
)

// StatementGenerator renders a bill as a downloadable PDF statement.
type StatementGenerator struct{}

func NewStatementGenerator() *StatementGenerator {
	return &StatementGenerator{}
}

func (sg *StatementGenerator) BillStatement(bill models.BillResponse) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 24)
	pdf.SetTextColor(0, 123, 255)
	pdf.Cell(0, 10, "Electricity Bill")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(100, 100, 100)
	pdf.Cell(0, 6, fmt.Sprintf("Billing period: %s", bill.YearMonth))
	pdf.Ln(10)

	// Status badge, green when settled
	pdf.SetFont("Arial", "B", 9)
	if bill.IsPaid {
		pdf.SetFillColor(212, 237, 218)
		pdf.SetTextColor(21, 87, 36)
		pdf.CellFormat(30, 6, "PAID", "", 0, "C", true, 0, "")
	} else {
		pdf.SetFillColor(248, 215, 218)
		pdf.SetTextColor(114, 28, 36)
		pdf.CellFormat(30, 6, "NOT PAID", "", 0, "C", true, 0, "")
	}
	pdf.Ln(12)

	pdf.SetTextColor(0, 0, 0)
	rows := []struct {
		label string
		value string
	}{
		{"Account", bill.Username},
		{"Total usage", fmt.Sprintf("%.2f kWh", bill.TotalKWh)},
		{"Amount", fmt.Sprintf("%.2f", bill.Amount)},
	}
	if bill.PaymentDate != nil {
		rows = append(rows, struct {
			label string
			value string
		}{"Payment date", *bill.PaymentDate})
	}

	for _, row := range rows {
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(50, 8, row.label)
		pdf.SetFont("Arial", "", 10)
		pdf.Cell(0, 8, row.value)
		pdf.Ln(8)
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "I", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.MultiCell(0, 5, bill.Message, "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering bill statement: %w", err)
	}
	return buf.Bytes(), nil
}
