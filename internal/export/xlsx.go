package export

import (
	"bytes"
	"fmt"
	"slices"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/ebill/internal/bill"
	"github.com/MrJamesThe3rd/ebill/internal/metrics"
	"github.com/MrJamesThe3rd/ebill/internal/report"
	"github.com/MrJamesThe3rd/ebill/internal/tariff"
)

const (
	summarySheet = "summary"
	billsSheet   = "bills"
	dailySheet   = "daily"
)

// ReportXLSX renders a summary workbook with the bills it was built from.
func ReportXLSX(summary report.Summary, bills []*bill.Bill) ([]byte, error) {
	start := time.Now()

	data, err := reportXLSX(summary, bills)

	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	metrics.ObserveRender(FormatXLSX, result, time.Since(start))

	return data, err
}

func reportXLSX(summary report.Summary, bills []*bill.Bill) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(billsSheet)
	f.NewSheet(dailySheet)

	_ = f.SetCellValue(summarySheet, "A1", "Billing Report")
	_ = f.SetCellValue(summarySheet, "A3", "Total Bills")
	_ = f.SetCellValue(summarySheet, "B3", summary.TotalBills)
	_ = f.SetCellValue(summarySheet, "A4", "Total Revenue")
	_ = f.SetCellValue(summarySheet, "B4", summary.TotalRevenue)
	_ = f.SetCellValue(summarySheet, "A5", "Average Units")
	_ = f.SetCellValue(summarySheet, "B5", summary.AverageUnits)

	_ = f.SetCellValue(summarySheet, "A7", "Customer Type")
	_ = f.SetCellValue(summarySheet, "B7", "Bills")
	_ = f.SetCellValue(summarySheet, "C7", "Revenue")

	types := make([]tariff.CustomerType, 0, len(summary.ByType))
	for ct := range summary.ByType {
		types = append(types, ct)
	}
	slices.Sort(types)

	for i, ct := range types {
		row := 8 + i
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), string(ct))
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), summary.ByType[ct].Bills)
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("C%d", row), summary.ByType[ct].Revenue)
	}

	for i, h := range CSVHeader {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("resolving header cell: %w", err)
		}
		_ = f.SetCellValue(billsSheet, cell, h)
	}

	for i, b := range bills {
		row := i + 2
		values := []any{
			b.Number, b.CustomerName, string(b.CustomerType), b.Units,
			b.EnergyCharge, b.FixedCharge, b.GST, b.Total,
			string(b.Status), b.CreatedAt.Format(time.RFC3339),
		}

		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, fmt.Errorf("resolving bill cell: %w", err)
			}
			_ = f.SetCellValue(billsSheet, cell, v)
		}
	}

	_ = f.SetCellValue(dailySheet, "A1", "Date")
	_ = f.SetCellValue(dailySheet, "B1", "Bills")
	_ = f.SetCellValue(dailySheet, "C1", "Revenue")

	for i, d := range summary.Daily {
		row := i + 2
		_ = f.SetCellValue(dailySheet, fmt.Sprintf("A%d", row), d.Date.Format("2006-01-02"))
		_ = f.SetCellValue(dailySheet, fmt.Sprintf("B%d", row), d.Bills)
		_ = f.SetCellValue(dailySheet, fmt.Sprintf("C%d", row), d.Revenue)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing xlsx: %w", err)
	}

	return buf.Bytes(), nil
}
