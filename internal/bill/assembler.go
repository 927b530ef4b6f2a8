package bill

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/MrJamesThe3rd/ebill/internal/tariff"
)

// Assembler prices a reading and stamps it with a bill number and creation time.
// The zero value uses random numbers and the wall clock.
type Assembler struct {
	NewNumber func() string
	Now       func() time.Time
}

// RandomNumber returns BILL followed by five random digits. Numbers are not
// unique by construction; the ledger rejects collisions.
func RandomNumber() string {
	return fmt.Sprintf("BILL%d", 10000+rand.IntN(90000))
}

// CreateBill prices units for customerType and returns the unsaved bill. A
// tariff error is returned as is and no bill is produced.
func (a Assembler) CreateBill(customerName string, customerType tariff.CustomerType, units float64, status Status) (*Bill, error) {
	charges, err := tariff.ComputeCharges(units, customerType)
	if err != nil {
		return nil, err
	}

	if status == "" {
		status = StatusUnpaid
	}

	return &Bill{
		Number:       a.number(),
		CustomerName: customerName,
		CustomerType: tariff.ScheduleFor(customerType).Type,
		Units:        tariff.NormalizeUnits(units),
		EnergyCharge: charges.EnergyCharge,
		FixedCharge:  charges.FixedCharge,
		GST:          charges.GST,
		Total:        charges.Total,
		Status:       status,
		CreatedAt:    a.now(),
	}, nil
}

// CreateBill assembles a bill with the default Assembler.
func CreateBill(customerName string, customerType tariff.CustomerType, units float64, status Status) (*Bill, error) {
	return Assembler{}.CreateBill(customerName, customerType, units, status)
}

func (a Assembler) number() string {
	if a.NewNumber != nil {
		return a.NewNumber()
	}

	return RandomNumber()
}

func (a Assembler) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}

	return time.Now()
}
