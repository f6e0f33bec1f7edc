package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Receipt describes a settled payment to be rendered as a PDF document.
type Receipt struct {
	Number      string
	Issuer      string
	StudentName string
	CourseTitle string
	Amount      int64
	Currency    string
	PaidAt      time.Time
}

// ReceiptRenderer renders payment receipts.
type ReceiptRenderer struct{}

// NewReceiptRenderer constructs a receipt renderer.
func NewReceiptRenderer() *ReceiptRenderer {
	return &ReceiptRenderer{}
}

// Render produces the PDF bytes for a receipt.
func (r *ReceiptRenderer) Render(receipt Receipt) ([]byte, error) {
	if receipt.Number == "" {
		return nil, fmt.Errorf("receipt requires a number")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, receipt.Issuer, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 8, fmt.Sprintf("Payment receipt %s", receipt.Number), "", 1, "C", false, 0, "")
	pdf.Ln(8)

	rows := [][2]string{
		{"Student", receipt.StudentName},
		{"Course", receipt.CourseTitle},
		{"Amount", fmt.Sprintf("%.2f %s", float64(receipt.Amount)/100, receipt.Currency)},
		{"Paid at", receipt.PaidAt.Format("2006-01-02 15:04 MST")},
	}

	pdf.SetFont("Arial", "", 10)
	for _, row := range rows {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(45, 8, row[0], "1", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(135, 8, row[1], "1", 1, "", false, 0, "")
	}

	pdf.Ln(10)
	pdf.SetFont("Arial", "I", 9)
	pdf.CellFormat(0, 6, "This document confirms the payment listed above.", "", 1, "L", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}
