package report

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ebill/internal/bill"
	"github.com/MrJamesThe3rd/ebill/internal/tariff"
)

// TypeTotals aggregates the bills of one customer class.
type TypeTotals struct {
	Bills   int
	Revenue float64
}

// DailyRevenue is the billed amount of one calendar day.
type DailyRevenue struct {
	Date    time.Time
	Bills   int
	Revenue float64
}

type Summary struct {
	TotalBills   int
	TotalRevenue float64
	AverageUnits float64
	ByType       map[tariff.CustomerType]TypeTotals
	Daily        []DailyRevenue
}

// Summarize aggregates bills. Amounts are accumulated as decimals so the
// totals match the sum of the printed bill totals.
func Summarize(bills []*bill.Bill) Summary {
	summary := Summary{
		TotalBills: len(bills),
		ByType:     make(map[tariff.CustomerType]TypeTotals),
	}

	if len(bills) == 0 {
		return summary
	}

	var (
		revenue = decimal.Zero
		units   = decimal.Zero
		byType  = make(map[tariff.CustomerType]decimal.Decimal)
		byDay   = make(map[time.Time]decimal.Decimal)
		perDay  = make(map[time.Time]int)
	)

	for _, b := range bills {
		total := decimal.NewFromFloat(b.Total)

		revenue = revenue.Add(total)
		units = units.Add(decimal.NewFromFloat(b.Units))

		byType[b.CustomerType] = byType[b.CustomerType].Add(total)

		tt := summary.ByType[b.CustomerType]
		tt.Bills++
		summary.ByType[b.CustomerType] = tt

		day := dayOf(b.CreatedAt)
		byDay[day] = byDay[day].Add(total)
		perDay[day]++
	}

	summary.TotalRevenue = revenue.Round(2).InexactFloat64()
	summary.AverageUnits = units.Div(decimal.NewFromInt(int64(len(bills)))).Round(2).InexactFloat64()

	for ct, amount := range byType {
		tt := summary.ByType[ct]
		tt.Revenue = amount.Round(2).InexactFloat64()
		summary.ByType[ct] = tt
	}

	for day, amount := range byDay {
		summary.Daily = append(summary.Daily, DailyRevenue{
			Date:    day,
			Bills:   perDay[day],
			Revenue: amount.Round(2).InexactFloat64(),
		})
	}

	slices.SortFunc(summary.Daily, func(a, b DailyRevenue) int {
		return a.Date.Compare(b.Date)
	})

	return summary
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Lister is the slice of the bill service a report needs.
type Lister interface {
	List(ctx context.Context, filter bill.ListFilter) ([]*bill.Bill, error)
}

type Service struct {
	bills Lister
}

func NewService(bills Lister) *Service {
	return &Service{bills: bills}
}

// Build lists the bills matching filter and summarizes them. The bills are
// returned too so callers can export the same rows the summary covers.
func (s *Service) Build(ctx context.Context, filter bill.ListFilter) (Summary, []*bill.Bill, error) {
	bills, err := s.bills.List(ctx, filter)
	if err != nil {
		return Summary{}, nil, fmt.Errorf("listing bills: %w", err)
	}

	return Summarize(bills), bills, nil
}
