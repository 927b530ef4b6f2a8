package importer

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ebill/internal/tariff"
)

// parseUnits reads a meter value. Semicolon files use the European format
// ("1.234,5"). Values that do not parse become 0.
func parseUnits(s string, european bool) float64 {
	clean := strings.ReplaceAll(s, " ", "")

	if european {
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	} else {
		clean = strings.ReplaceAll(clean, ",", "")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0
	}

	return tariff.NormalizeUnits(d.InexactFloat64())
}
