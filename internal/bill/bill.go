package bill

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ebill/internal/tariff"
)

var (
	ErrNotFound            = errors.New("bill not found")
	ErrDuplicateNumber     = errors.New("bill number already exists")
	ErrInvalidStatus       = errors.New("invalid bill status")
	ErrMissingCustomerName = errors.New("customer name is required")
)

// Status represents the payment state of a bill.
type Status string

const (
	StatusUnpaid Status = "Unpaid"
	StatusPaid   Status = "Paid"
)

// ParseStatus matches s case-insensitively against the known statuses.
func ParseStatus(s string) (Status, error) {
	switch {
	case strings.EqualFold(s, string(StatusUnpaid)):
		return StatusUnpaid, nil
	case strings.EqualFold(s, string(StatusPaid)):
		return StatusPaid, nil
	}

	return "", ErrInvalidStatus
}

// Bill is a priced electricity bill. Only Status changes after creation.
type Bill struct {
	ID           uuid.UUID
	Number       string
	CustomerName string
	CustomerType tariff.CustomerType
	Units        float64
	EnergyCharge float64
	FixedCharge  float64
	GST          float64
	Total        float64
	Status       Status
	CreatedAt    time.Time
}

// IsPaid reports whether the bill has been settled.
func (b *Bill) IsPaid() bool {
	return b.Status == StatusPaid
}

// Charges returns the itemized amounts of the bill.
func (b *Bill) Charges() tariff.Charges {
	return tariff.Charges{
		EnergyCharge: b.EnergyCharge,
		FixedCharge:  b.FixedCharge,
		GST:          b.GST,
		Total:        b.Total,
	}
}
