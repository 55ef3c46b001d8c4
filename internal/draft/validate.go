package draft

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tariffnom/tariffnom/internal/core/errx"
)

const minYear = 2000

// ValidateForSubmit checks a draft before calculation. Rules run in a
// fixed order and the first failure wins; a nil return means the draft
// may be submitted. Validation never touches the network.
func ValidateForSubmit(d Draft, now time.Time) *errx.Error {
	if d.ImportCountry == "" || d.ExportCountry == "" || d.HsCode == "" || strings.TrimSpace(d.Value) == "" {
		return errx.Validation("Please fill in all required fields")
	}

	if d.ImportCountry == d.ExportCountry {
		return errx.Validation("Import country and export country cannot be the same")
	}

	value, err := decimal.NewFromString(strings.TrimSpace(d.Value))
	if err != nil || !value.IsPositive() {
		return errx.Validation("Product value must be greater than 0")
	}

	if d.ShippingMode == "" {
		return errx.Validation("Please select a shipping mode")
	}

	if y := strings.TrimSpace(d.Year); y != "" {
		maxYear := now.Year() + 1
		year, err := strconv.Atoi(y)
		if err != nil || year < minYear || year > maxYear {
			return errx.Validation(fmt.Sprintf("Year must be between %d and %d", minYear, maxYear))
		}
	}

	return nil
}
