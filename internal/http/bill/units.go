package bill

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ebill/internal/tariff"
)

// Units is a meter reading decoded leniently. Numbers and numeric strings are
// accepted; null, other strings and non-scalar values read as 0.
type Units float64

func (u *Units) UnmarshalJSON(data []byte) error {
	*u = 0

	s := strings.TrimSpace(string(data))
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(s, `"`), `"`))

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}

	*u = Units(tariff.NormalizeUnits(d.InexactFloat64()))

	return nil
}
