package draft

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tariffnom/tariffnom/internal/api"
)

// Field names accepted by Controller.UpdateField. Selectors emit the same
// names so one generic update path handles every input.
const (
	FieldImportCountry = "importCountry"
	FieldExportCountry = "exportCountry"
	FieldHsCode        = "hsCode"
	FieldValue         = "value"
	FieldWeight        = "weight"
	FieldYear          = "year"
	FieldShippingMode  = "shippingMode"
)

// Draft is the mutable transaction being assembled on the detail page.
// Values stay in their raw string form until submission so the form can
// round-trip whatever the user typed.
type Draft struct {
	ImportCountry string
	ExportCountry string
	HsCode        string
	Value         string
	Weight        string
	Year          string
	ShippingMode  string
}

// IsEmpty reports whether nothing has been entered yet.
func (d Draft) IsEmpty() bool {
	return d == Draft{}
}

// ToRequest converts a validated draft into the calculation request body.
// Call ValidateForSubmit first; conversion failures after validation mean
// the draft was mutated concurrently and are returned as plain errors.
func (d Draft) ToRequest() (api.TariffRequest, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(d.Value))
	if err != nil {
		return api.TariffRequest{}, err
	}

	req := api.TariffRequest{
		ImportingCountry: d.ImportCountry,
		ExportingCountry: d.ExportCountry,
		HsCode:           d.HsCode,
		ProductValue:     value,
	}

	if w := strings.TrimSpace(d.Weight); w != "" {
		weight, err := decimal.NewFromString(w)
		if err != nil {
			return api.TariffRequest{}, err
		}
		req.Weight = &weight
	}
	if d.ShippingMode != "" {
		mode := d.ShippingMode
		req.ShippingMode = &mode
	}
	if y := strings.TrimSpace(d.Year); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			return api.TariffRequest{}, err
		}
		req.Year = &year
	}
	return req, nil
}
