package tariff

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// CustomerType selects the rate schedule and usage ceiling for a bill.
type CustomerType string

const (
	Domestic   CustomerType = "Domestic"
	Commercial CustomerType = "Commercial"
)

const (
	// SlabSize is the width in units of each progressive slab.
	SlabSize = 100.0
	// SlabStep is added to the per-unit rate for every slab after the first.
	SlabStep = 0.5
	// GSTRate applies to the energy charge only.
	GSTRate = 0.18
)

// Schedule is the rate table of a single customer class.
type Schedule struct {
	Type        CustomerType
	BaseRate    float64
	FixedCharge float64
	Ceiling     float64
}

var (
	domesticSchedule = Schedule{
		Type:        Domestic,
		BaseRate:    1.5,
		FixedCharge: 50.0,
		Ceiling:     10000,
	}
	commercialSchedule = Schedule{
		Type:        Commercial,
		BaseRate:    3.5,
		FixedCharge: 100.0,
		Ceiling:     50000,
	}
)

// ParseCustomerType matches s case-insensitively against Domestic. Anything
// else, including the empty string, is Commercial.
func ParseCustomerType(s string) CustomerType {
	if strings.EqualFold(strings.TrimSpace(s), string(Domestic)) {
		return Domestic
	}

	return Commercial
}

// ScheduleFor returns the schedule for t. Unknown values use the commercial table.
func ScheduleFor(t CustomerType) Schedule {
	if ParseCustomerType(string(t)) == Domestic {
		return domesticSchedule
	}

	return commercialSchedule
}

// Rate returns the per-unit rate of the 1-indexed slab.
func (s Schedule) Rate(slab int) float64 {
	return s.BaseRate + float64(slab-1)*SlabStep
}

// NormalizeUnits coerces NaN and negative readings to zero.
func NormalizeUnits(units float64) float64 {
	if math.IsNaN(units) || units < 0 {
		return 0
	}

	return units
}

// Charges is the itemized amount of a bill. Every field is rounded to 2 decimals
// and Total is the sum of the other three.
type Charges struct {
	EnergyCharge float64
	FixedCharge  float64
	GST          float64
	Total        float64
}

// ComputeCharges prices units under the schedule of customerType. It returns a
// *UsageCeilingExceededError when units exceed the class ceiling.
func ComputeCharges(units float64, customerType CustomerType) (Charges, error) {
	units = NormalizeUnits(units)
	s := ScheduleFor(customerType)

	if units > s.Ceiling {
		return Charges{}, &UsageCeilingExceededError{
			Units:        units,
			Ceiling:      s.Ceiling,
			CustomerType: s.Type,
		}
	}

	energy := s.energy(units)

	energyCharge := round2(energy)
	fixedCharge := round2(s.FixedCharge)
	gst := round2(energy * GSTRate)
	total := energyCharge.Add(fixedCharge).Add(gst)

	return Charges{
		EnergyCharge: energyCharge.InexactFloat64(),
		FixedCharge:  fixedCharge.InexactFloat64(),
		GST:          gst.InexactFloat64(),
		Total:        total.InexactFloat64(),
	}, nil
}

// SlabLine is one slab of an energy charge breakdown.
type SlabLine struct {
	Slab   int
	Units  float64
	Rate   float64
	Amount float64
}

// Breakdown itemizes the energy charge of units slab by slab. Amounts are
// rounded for display; their sum can differ from EnergyCharge by rounding.
func Breakdown(units float64, customerType CustomerType) ([]SlabLine, error) {
	units = NormalizeUnits(units)
	s := ScheduleFor(customerType)

	if units > s.Ceiling {
		return nil, &UsageCeilingExceededError{
			Units:        units,
			Ceiling:      s.Ceiling,
			CustomerType: s.Type,
		}
	}

	var lines []SlabLine

	remaining := units
	for slab := 1; remaining > 0; slab++ {
		n := math.Min(remaining, SlabSize)
		rate := s.Rate(slab)

		lines = append(lines, SlabLine{
			Slab:   slab,
			Units:  n,
			Rate:   rate,
			Amount: round2(n * rate).InexactFloat64(),
		})

		remaining -= n
	}

	return lines, nil
}

// energy accumulates unrounded slab amounts.
func (s Schedule) energy(units float64) float64 {
	var energy float64

	remaining := units
	for slab := 1; remaining > 0; slab++ {
		n := math.Min(remaining, SlabSize)
		energy += n * s.Rate(slab)
		remaining -= n
	}

	return energy
}

func round2(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}
