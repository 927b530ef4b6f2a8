package tariff

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUsageCeilingExceeded = errors.New("unit value exceeds permissible usage range")

// UsageCeilingExceededError rejects a reading above the class ceiling.
type UsageCeilingExceededError struct {
	Units        float64
	Ceiling      float64
	CustomerType CustomerType
}

func (e *UsageCeilingExceededError) Error() string {
	return fmt.Sprintf("%s for %s: %g > %g",
		ErrUsageCeilingExceeded, strings.ToLower(string(e.CustomerType)), e.Units, e.Ceiling)
}

func (e *UsageCeilingExceededError) Is(target error) bool {
	return target == ErrUsageCeilingExceeded
}
