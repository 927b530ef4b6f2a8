package bill_test

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/ebill/internal/bill"
	"github.com/MrJamesThe3rd/ebill/internal/tariff"
)

func TestCreateBill_Commercial(t *testing.T) {
	got, err := bill.CreateBill("Alice", tariff.Commercial, 50, bill.StatusUnpaid)
	require.NoError(t, err)

	want, err := tariff.ComputeCharges(50, tariff.Commercial)
	require.NoError(t, err)

	assert.NotEmpty(t, got.Number)
	assert.Regexp(t, regexp.MustCompile(`^BILL\d{5}$`), got.Number)
	assert.Equal(t, "Alice", got.CustomerName)
	assert.Equal(t, tariff.Commercial, got.CustomerType)
	assert.Equal(t, bill.StatusUnpaid, got.Status)
	assert.Equal(t, 50.0, got.Units)
	assert.Equal(t, want, got.Charges())
	assert.False(t, got.CreatedAt.IsZero())
}

func TestAssembler_CreateBill(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	a := bill.Assembler{
		NewNumber: func() string { return "BILL12345" },
		Now:       func() time.Time { return now },
	}

	type args struct {
		name         string
		customerType tariff.CustomerType
		units        float64
		status       bill.Status
	}

	type testCase struct {
		name    string
		args    args
		verify  func(t *testing.T, b *bill.Bill)
		wantErr bool
	}

	tests := []testCase{
		{
			name: "Domestic paid",
			args: args{name: "Bob", customerType: tariff.Domestic, units: 250, status: bill.StatusPaid},
			verify: func(t *testing.T, b *bill.Bill) {
				assert.Equal(t, "BILL12345", b.Number)
				assert.Equal(t, now, b.CreatedAt)
				assert.Equal(t, bill.StatusPaid, b.Status)
				assert.InDelta(t, 610.5, b.Total, 1e-9)
			},
		},
		{
			name: "Empty status defaults to unpaid",
			args: args{name: "Bob", customerType: tariff.Domestic, units: 0},
			verify: func(t *testing.T, b *bill.Bill) {
				assert.Equal(t, bill.StatusUnpaid, b.Status)
				assert.InDelta(t, 50.0, b.Total, 1e-9)
			},
		},
		{
			name: "Unknown class is stored as commercial",
			args: args{name: "Shop", customerType: tariff.CustomerType("retail"), units: 10},
			verify: func(t *testing.T, b *bill.Bill) {
				assert.Equal(t, tariff.Commercial, b.CustomerType)
			},
		},
		{
			name: "Negative units stored as zero",
			args: args{name: "Bob", customerType: tariff.Domestic, units: -5},
			verify: func(t *testing.T, b *bill.Bill) {
				assert.Equal(t, 0.0, b.Units)
			},
		},
		{
			name:    "Ceiling exceeded",
			args:    args{name: "Bob", customerType: tariff.Domestic, units: 10001},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.CreateBill(tt.args.name, tt.args.customerType, tt.args.units, tt.args.status)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)

			if tt.verify != nil {
				tt.verify(t, got)
			}
		})
	}
}

func TestAssembler_CreateBill_PropagatesTariffError(t *testing.T) {
	_, want := tariff.ComputeCharges(10001, tariff.Domestic)

	_, got := bill.CreateBill("Bob", tariff.Domestic, 10001, bill.StatusUnpaid)

	var ceilingErr *tariff.UsageCeilingExceededError
	require.True(t, errors.As(got, &ceilingErr))
	assert.Equal(t, want, got)
}

func TestParseStatus(t *testing.T) {
	s, err := bill.ParseStatus("paid")
	require.NoError(t, err)
	assert.Equal(t, bill.StatusPaid, s)

	s, err = bill.ParseStatus("UNPAID")
	require.NoError(t, err)
	assert.Equal(t, bill.StatusUnpaid, s)

	_, err = bill.ParseStatus("overdue")
	assert.ErrorIs(t, err, bill.ErrInvalidStatus)
}
