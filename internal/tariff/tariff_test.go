package tariff_test

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/ebill/internal/tariff"
)

func TestComputeCharges(t *testing.T) {
	type args struct {
		units        float64
		customerType tariff.CustomerType
	}

	type testCase struct {
		name    string
		args    args
		want    tariff.Charges
		wantErr bool
	}

	tests := []testCase{
		{
			name: "Domestic zero usage",
			args: args{units: 0, customerType: tariff.Domestic},
			want: tariff.Charges{EnergyCharge: 0, FixedCharge: 50, GST: 0, Total: 50},
		},
		{
			name: "Domestic single full slab",
			args: args{units: 100, customerType: tariff.Domestic},
			want: tariff.Charges{EnergyCharge: 150, FixedCharge: 50, GST: 27, Total: 227},
		},
		{
			name: "Domestic partial third slab",
			args: args{units: 250, customerType: tariff.Domestic},
			want: tariff.Charges{EnergyCharge: 475, FixedCharge: 50, GST: 85.5, Total: 610.5},
		},
		{
			name: "Domestic at ceiling",
			args: args{units: 10000, customerType: tariff.Domestic},
			// 100 slabs: 100 * (1.5*100 + 0.5*100*99/2)
			want: tariff.Charges{EnergyCharge: 262500, FixedCharge: 50, GST: 47250, Total: 309800},
		},
		{
			name:    "Domestic above ceiling",
			args:    args{units: 10001, customerType: tariff.Domestic},
			wantErr: true,
		},
		{
			name: "Commercial partial first slab",
			args: args{units: 50, customerType: tariff.Commercial},
			want: tariff.Charges{EnergyCharge: 175, FixedCharge: 100, GST: 31.5, Total: 306.5},
		},
		{
			name: "Commercial zero usage",
			args: args{units: 0, customerType: tariff.Commercial},
			want: tariff.Charges{EnergyCharge: 0, FixedCharge: 100, GST: 0, Total: 100},
		},
		{
			name:    "Commercial above ceiling",
			args:    args{units: 50000.01, customerType: tariff.Commercial},
			wantErr: true,
		},
		{
			name: "Unknown type uses commercial table",
			args: args{units: 50, customerType: tariff.CustomerType("industrial")},
			want: tariff.Charges{EnergyCharge: 175, FixedCharge: 100, GST: 31.5, Total: 306.5},
		},
		{
			name: "Negative units coerce to zero",
			args: args{units: -40, customerType: tariff.Domestic},
			want: tariff.Charges{EnergyCharge: 0, FixedCharge: 50, GST: 0, Total: 50},
		},
		{
			name: "Fractional units",
			args: args{units: 100.5, customerType: tariff.Domestic},
			// 150 + 0.5 * 2.0 = 151, gst 27.18
			want: tariff.Charges{EnergyCharge: 151, FixedCharge: 50, GST: 27.18, Total: 228.18},
		},
		{
			name:    "Infinite units exceed ceiling",
			args:    args{units: math.Inf(1), customerType: tariff.Domestic},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tariff.ComputeCharges(tt.args.units, tt.args.customerType)

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tariff.ErrUsageCeilingExceeded))
				assert.Equal(t, tariff.Charges{}, got)

				return
			}

			require.NoError(t, err)
			assert.InDelta(t, tt.want.EnergyCharge, got.EnergyCharge, 1e-9)
			assert.InDelta(t, tt.want.FixedCharge, got.FixedCharge, 1e-9)
			assert.InDelta(t, tt.want.GST, got.GST, 1e-9)
			assert.InDelta(t, tt.want.Total, got.Total, 1e-9)
		})
	}
}

func TestComputeCharges_CeilingErrorDetails(t *testing.T) {
	_, err := tariff.ComputeCharges(10001, tariff.Domestic)

	var ceilingErr *tariff.UsageCeilingExceededError
	require.True(t, errors.As(err, &ceilingErr))
	assert.Equal(t, 10001.0, ceilingErr.Units)
	assert.Equal(t, 10000.0, ceilingErr.Ceiling)
	assert.Equal(t, tariff.Domestic, ceilingErr.CustomerType)
	assert.Contains(t, err.Error(), "domestic")
}

func TestComputeCharges_Ceilings(t *testing.T) {
	for _, tc := range []struct {
		customerType tariff.CustomerType
		ceiling      float64
	}{
		{tariff.Domestic, 10000},
		{tariff.Commercial, 50000},
	} {
		_, err := tariff.ComputeCharges(tc.ceiling, tc.customerType)
		assert.NoError(t, err, "%s at ceiling", tc.customerType)

		_, err = tariff.ComputeCharges(tc.ceiling+0.001, tc.customerType)
		assert.ErrorIs(t, err, tariff.ErrUsageCeilingExceeded, "%s above ceiling", tc.customerType)
	}
}

func TestComputeCharges_Properties(t *testing.T) {
	for _, ct := range []tariff.CustomerType{tariff.Domestic, tariff.Commercial} {
		ceiling := tariff.ScheduleFor(ct).Ceiling
		prevEnergy := -1.0

		for units := 0.0; units <= ceiling; units += 37 {
			got, err := tariff.ComputeCharges(units, ct)
			require.NoError(t, err)

			again, err := tariff.ComputeCharges(units, ct)
			require.NoError(t, err)
			assert.Equal(t, got, again, "idempotent at %v", units)

			assert.GreaterOrEqual(t, got.Total, got.FixedCharge)
			assert.GreaterOrEqual(t, got.EnergyCharge, 0.0)
			assert.GreaterOrEqual(t, got.GST, 0.0)

			if units > 0 {
				assert.Greater(t, got.EnergyCharge, prevEnergy, "strictly increasing at %v", units)
			}

			prevEnergy = got.EnergyCharge

			wantGST := decimal.NewFromFloat(got.EnergyCharge * tariff.GSTRate).Round(2).InexactFloat64()
			assert.InDelta(t, wantGST, got.GST, 1e-9, "gst at %v", units)

			wantTotal := decimal.NewFromFloat(got.EnergyCharge + got.FixedCharge + got.GST).Round(2).InexactFloat64()
			assert.InDelta(t, wantTotal, got.Total, 1e-9, "total at %v", units)
		}
	}
}

// GST is taken from the unrounded energy charge, so for fractional readings it
// can sit one cent away from 18% of the printed energy charge.
func TestComputeCharges_FractionalUnitsGST(t *testing.T) {
	rate := tariff.ScheduleFor(tariff.Domestic).Rate(1)

	for i := 0; i <= 99_000; i++ {
		units := float64(i) / 1000

		got, err := tariff.ComputeCharges(units, tariff.Domestic)
		require.NoError(t, err)

		fromUnrounded := decimal.NewFromFloat(units * rate * tariff.GSTRate).Round(2).InexactFloat64()
		require.InDelta(t, fromUnrounded, got.GST, 1e-9, "gst from unrounded energy at %v", units)

		fromPrinted := decimal.NewFromFloat(got.EnergyCharge * tariff.GSTRate).Round(2).InexactFloat64()
		require.InDelta(t, fromPrinted, got.GST, 0.01+1e-9, "gst within a cent at %v", units)
	}

	got, err := tariff.ComputeCharges(0.017, tariff.Domestic)
	require.NoError(t, err)
	assert.Equal(t, 0.03, got.EnergyCharge)
	assert.Equal(t, 0.0, got.GST)
}

// Amounts round half away from zero on their shortest decimal form.
func TestComputeCharges_RoundsShortestDecimal(t *testing.T) {
	got, err := tariff.ComputeCharges(0.05, tariff.Domestic)
	require.NoError(t, err)
	assert.Equal(t, 0.08, got.EnergyCharge)
}

func TestParseCustomerType(t *testing.T) {
	tests := map[string]tariff.CustomerType{
		"Domestic":   tariff.Domestic,
		"domestic":   tariff.Domestic,
		"DOMESTIC":   tariff.Domestic,
		" Domestic ": tariff.Domestic,
		"Commercial": tariff.Commercial,
		"":           tariff.Commercial,
		"industrial": tariff.Commercial,
	}

	for in, want := range tests {
		assert.Equal(t, want, tariff.ParseCustomerType(in), "input %q", in)
	}
}

func TestBreakdown(t *testing.T) {
	lines, err := tariff.Breakdown(250, tariff.Domestic)
	require.NoError(t, err)
	require.Len(t, lines, 3)

	assert.Equal(t, tariff.SlabLine{Slab: 1, Units: 100, Rate: 1.5, Amount: 150}, lines[0])
	assert.Equal(t, tariff.SlabLine{Slab: 2, Units: 100, Rate: 2.0, Amount: 200}, lines[1])
	assert.Equal(t, tariff.SlabLine{Slab: 3, Units: 50, Rate: 2.5, Amount: 125}, lines[2])

	empty, err := tariff.Breakdown(0, tariff.Commercial)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = tariff.Breakdown(60000, tariff.Commercial)
	assert.ErrorIs(t, err, tariff.ErrUsageCeilingExceeded)
}

func TestNormalizeUnits(t *testing.T) {
	assert.Equal(t, 0.0, tariff.NormalizeUnits(math.NaN()))
	assert.Equal(t, 0.0, tariff.NormalizeUnits(-1))
	assert.Equal(t, 12.5, tariff.NormalizeUnits(12.5))
}
