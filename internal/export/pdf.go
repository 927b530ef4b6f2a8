package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/MrJamesThe3rd/ebill/internal/bill"
	"github.com/MrJamesThe3rd/ebill/internal/metrics"
	"github.com/MrJamesThe3rd/ebill/internal/tariff"
)

const (
	FormatPDF  = "pdf"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Issuer is printed in the header and footer of every bill.
var Issuer = "Electricity Board"

const (
	pageMargin = 15.0
	labelWidth = 120.0
	valueWidth = 60.0
	rowHeight  = 8.0
)

// BillPDF renders b as a single A4 invoice. Paid bills carry a diagonal
// PAID watermark.
func BillPDF(b *bill.Bill) ([]byte, error) {
	start := time.Now()

	data, err := billPDF(b)

	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	metrics.ObserveRender(FormatPDF, result, time.Since(start))

	return data, err
}

func billPDF(b *bill.Bill) ([]byte, error) {
	slabs, err := tariff.Breakdown(b.Units, b.CustomerType)
	if err != nil {
		return nil, fmt.Errorf("computing slab breakdown: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 5, fmt.Sprintf("%s - computer generated bill, no signature required", Issuer), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	if b.IsPaid() {
		paidWatermark(pdf)
	}

	// Header
	pdf.SetFont("Arial", "B", 18)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 10, Issuer, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 6, "Electricity Bill", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(90, 6, "Bill No: "+b.Number, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Date: "+b.CreatedAt.Format("2006-01-02 15:04"), "", 1, "R", false, 0, "")
	pdf.Ln(4)

	// Bill-to box
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, rowHeight, "Bill To", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, rowHeight, "Customer: "+b.CustomerName, "LR", 1, "L", false, 0, "")
	pdf.CellFormat(0, rowHeight, "Customer Type: "+string(b.CustomerType), "LR", 1, "L", false, 0, "")
	pdf.CellFormat(0, rowHeight, fmt.Sprintf("Units Consumed: %.2f", b.Units), "LRB", 1, "L", false, 0, "")
	pdf.Ln(6)

	// Charges
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(labelWidth, rowHeight, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(valueWidth, rowHeight, "Amount (Rs.)", "1", 1, "R", true, 0, "")
	pdf.SetFont("Arial", "", 10)

	chargeRow(pdf, "Energy Charge", b.EnergyCharge)
	chargeRow(pdf, "Fixed Charge", b.FixedCharge)
	chargeRow(pdf, fmt.Sprintf("GST (%.0f%% of energy charge)", tariff.GSTRate*100), b.GST)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(labelWidth, rowHeight+2, "Total Payable", "1", 0, "L", true, 0, "")
	pdf.CellFormat(valueWidth, rowHeight+2, fmt.Sprintf("%.2f", b.Total), "1", 1, "R", true, 0, "")
	pdf.Ln(6)

	if len(slabs) > 0 {
		slabTable(pdf, slabs)
	}

	// Payment note
	pdf.SetFont("Arial", "", 9)
	if b.IsPaid() {
		pdf.MultiCell(0, 5, "Payment received. Thank you.", "", "L", false)
	} else {
		pdf.MultiCell(0, 5, "Please pay the total amount before the due date to avoid disconnection.", "", "L", false)
	}

	// Signature line
	pdf.Ln(18)
	x := pdf.GetX() + 120
	y := pdf.GetY()
	pdf.Line(x, y, x+60, y)
	pdf.SetXY(x, y+1)
	pdf.CellFormat(60, 5, "Authorised Signatory", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}

	return buf.Bytes(), nil
}

func chargeRow(pdf *gofpdf.Fpdf, label string, amount float64) {
	pdf.CellFormat(labelWidth, rowHeight, label, "1", 0, "L", false, 0, "")
	pdf.CellFormat(valueWidth, rowHeight, fmt.Sprintf("%.2f", amount), "1", 1, "R", false, 0, "")
}

func slabTable(pdf *gofpdf.Fpdf, slabs []tariff.SlabLine) {
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, rowHeight, "Slab Breakdown", "", 1, "L", false, 0, "")

	widths := []float64{30, 50, 50, 50}
	for i, h := range []string{"Slab", "Units", "Rate (Rs./unit)", "Amount (Rs.)"} {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, s := range slabs {
		pdf.CellFormat(widths[0], 6, fmt.Sprintf("%d", s.Slab), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 6, fmt.Sprintf("%.2f", s.Units), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 6, fmt.Sprintf("%.2f", s.Rate), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, fmt.Sprintf("%.2f", s.Amount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(6)
}

func paidWatermark(pdf *gofpdf.Fpdf) {
	w, h := pdf.GetPageSize()

	pdf.SetFont("Arial", "B", 96)
	pdf.SetTextColor(0, 150, 0)
	pdf.SetAlpha(0.15, "Normal")

	pdf.TransformBegin()
	pdf.TransformRotate(45, w/2, h/2)
	pdf.Text(w/2-pdf.GetStringWidth("PAID")/2, h/2+12, "PAID")
	pdf.TransformEnd()

	pdf.SetAlpha(1, "Normal")
	pdf.SetTextColor(0, 0, 0)
}
