package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/MrJamesThe3rd/ebill/internal/bill"
	"github.com/MrJamesThe3rd/ebill/internal/metrics"
)

// CSVHeader is the first row written by BillCSV.
var CSVHeader = []string{
	"bill_no", "customer_name", "customer_type", "units",
	"energy_charge", "fixed_charge", "gst", "total", "status", "created_at",
}

// BillCSV writes a header row and one row per bill to w.
func BillCSV(w io.Writer, bills ...*bill.Bill) error {
	start := time.Now()

	err := billCSV(w, bills)

	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	metrics.ObserveRender(FormatCSV, result, time.Since(start))

	return err
}

func billCSV(w io.Writer, bills []*bill.Bill) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, b := range bills {
		if err := cw.Write(csvRecord(b)); err != nil {
			return fmt.Errorf("writing bill %s: %w", b.Number, err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}

	return nil
}

func csvRecord(b *bill.Bill) []string {
	return []string{
		b.Number,
		b.CustomerName,
		string(b.CustomerType),
		strconv.FormatFloat(b.Units, 'f', -1, 64),
		money(b.EnergyCharge),
		money(b.FixedCharge),
		money(b.GST),
		money(b.Total),
		string(b.Status),
		b.CreatedAt.Format(time.RFC3339),
	}
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
