package export_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/ebill/internal/bill"
	"github.com/MrJamesThe3rd/ebill/internal/export"
	"github.com/MrJamesThe3rd/ebill/internal/report"
	"github.com/MrJamesThe3rd/ebill/internal/tariff"
)

func sampleBill(status bill.Status) *bill.Bill {
	return &bill.Bill{
		Number:       "BILL12345",
		CustomerName: "Asha, Rao",
		CustomerType: tariff.Domestic,
		Units:        250,
		EnergyCharge: 425,
		FixedCharge:  50,
		GST:          76.5,
		Total:        551.5,
		Status:       status,
		CreatedAt:    time.Date(2026, time.March, 3, 10, 30, 0, 0, time.UTC),
	}
}

func TestBillPDF(t *testing.T) {
	tests := []struct {
		name   string
		status bill.Status
	}{
		{name: "Unpaid", status: bill.StatusUnpaid},
		{name: "PaidWithWatermark", status: bill.StatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := export.BillPDF(sampleBill(tt.status))
			require.NoError(t, err)

			assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
			assert.Contains(t, string(data), "%%EOF")
		})
	}
}

func TestBillPDF_ZeroUnits(t *testing.T) {
	b := sampleBill(bill.StatusUnpaid)
	b.Units = 0

	data, err := export.BillPDF(b)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestBillCSV(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, export.BillCSV(&buf, sampleBill(bill.StatusPaid), sampleBill(bill.StatusUnpaid)))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, export.CSVHeader, records[0])
	assert.Equal(t, []string{
		"BILL12345", "Asha, Rao", "Domestic", "250",
		"425.00", "50.00", "76.50", "551.50", "Paid", "2026-03-03T10:30:00Z",
	}, records[1])
	assert.Equal(t, "Unpaid", records[2][8])
}

func TestBillCSV_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, export.BillCSV(&buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestReportXLSX(t *testing.T) {
	bills := []*bill.Bill{sampleBill(bill.StatusPaid)}
	summary := report.Summarize(bills)

	data, err := export.ReportXLSX(summary, bills)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"summary", "bills", "daily"}, f.GetSheetList())

	total, err := f.GetCellValue("summary", "B3")
	require.NoError(t, err)
	assert.Equal(t, "1", total)

	ct, err := f.GetCellValue("summary", "A8")
	require.NoError(t, err)
	assert.Equal(t, "Domestic", ct)

	number, err := f.GetCellValue("bills", "A2")
	require.NoError(t, err)
	assert.Equal(t, "BILL12345", number)

	date, err := f.GetCellValue("daily", "A2")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-03", date)
}
