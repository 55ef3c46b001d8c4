package cli

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tariffnom/tariffnom/internal/api"
	"github.com/tariffnom/tariffnom/internal/draft"
	"github.com/tariffnom/tariffnom/internal/results"
)

var (
	calcImport   string
	calcExport   string
	calcHsCode   string
	calcValue    string
	calcWeight   string
	calcYear     string
	calcMode     string
	calcNoPanels bool
)

var calculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "Calculate the landed cost of a transaction",
	Long: `Validate the transaction parameters, run the tariff calculation and
print the cost breakdown together with the exchange-rate trend and the
predictive purchase recommendation.`,
	RunE: runCalculate,
}

func init() {
	calculateCmd.Flags().StringVar(&calcImport, "import", "", "importing country code")
	calculateCmd.Flags().StringVar(&calcExport, "export", "", "exporting country code")
	calculateCmd.Flags().StringVar(&calcHsCode, "hs-code", "", "HS code of the product")
	calculateCmd.Flags().StringVar(&calcValue, "value", "", "declared product value")
	calculateCmd.Flags().StringVar(&calcWeight, "weight", "", "total shipment weight in kg")
	calculateCmd.Flags().StringVar(&calcYear, "year", "", "tariff year (optional)")
	calculateCmd.Flags().StringVar(&calcMode, "mode", "", "shipping mode (air or sea)")
	calculateCmd.Flags().BoolVar(&calcNoPanels, "no-panels", false, "skip the analytical panels")
}

func runCalculate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if !app.Sessions.IsAuthenticated() {
		return fmt.Errorf("please log in first: tariffnom login --username <name>")
	}
	if err := app.Nav.GetStarted(); err != nil {
		return err
	}

	for name, value := range map[string]string{
		draft.FieldImportCountry: calcImport,
		draft.FieldExportCountry: calcExport,
		draft.FieldHsCode:        calcHsCode,
		draft.FieldValue:         calcValue,
		draft.FieldWeight:        calcWeight,
		draft.FieldYear:          calcYear,
		draft.FieldShippingMode:  calcMode,
	} {
		if value != "" {
			app.Drafts.UpdateField(ctx, name, value)
		}
	}

	if err := app.Calc.Submit(ctx); err != nil {
		return fmt.Errorf("%s", app.Calc.ErrorMessage())
	}

	result, ok := app.Calc.Result()
	if !ok {
		return fmt.Errorf("no calculation result available")
	}
	printResult(result)

	if suggestion, ok := app.Drafts.Suggestion(); ok {
		fmt.Printf("\nHS code %s suggested by assistant", suggestion.HsCode)
		if suggestion.Confidence != nil {
			fmt.Printf(" (confidence %.0f%%)", *suggestion.Confidence*100)
		}
		fmt.Println()
	}

	if calcNoPanels {
		return nil
	}

	view := results.NewView(app.Client, result, app.Drafts.Snapshot())
	view.LoadPanels(ctx)
	printPanels(view)
	return nil
}

func printResult(r api.TariffResult) {
	fmt.Printf("\n%sTariff calculation  %s -> %s  (HS %s)%s\n",
		app.Theme.Heading, r.ExportingCountry, r.ImportingCountry, r.HsCode, app.Theme.Reset)
	fmt.Println("----------------------------------------------")
	printMoney("Product value", r.ProductValue)
	printMoney("Customs value", r.CustomsValue)
	printMoney("Base duty", r.BaseDuty)
	if !r.AdditionalDuties.IsZero() {
		printMoney("Additional duties", r.AdditionalDuties)
	}
	fmt.Printf("%-22s %s%%\n", "Ad valorem rate", r.AdValoremRate.Mul(decimal.NewFromInt(100)))
	printMoney("VAT / GST", r.VatOrGst)
	printMoney("Shipping cost", r.ShippingCost)
	printMoney("Tariff amount", r.TariffAmount)
	fmt.Println("----------------------------------------------")
	printMoney("Total cost", r.TotalCost)
	if r.TradeAgreement != "" {
		fmt.Printf("%-22s %s\n", "Trade agreement", r.TradeAgreement)
	}
	if r.Notes != "" {
		fmt.Printf("%-22s %s\n", "Notes", r.Notes)
	}
}

func printMoney(label string, v decimal.Decimal) {
	fmt.Printf("%-22s %s\n", label, v.StringFixed(2))
}

func printPanels(view *results.View) {
	if rates := view.ExchangeRates(); rates.Err != "" {
		fmt.Printf("\nExchange rates: %s\n", rates.Err)
	} else if rates.Data != nil {
		d := rates.Data
		fmt.Printf("\nExchange rate %s/%s: current %s, average %s (trend: %s)\n",
			d.ImportingCurrency, d.ExportingCurrency,
			d.CurrentRate.StringFixed(4), d.AverageRate.StringFixed(4), d.TrendAnalysis)
		if d.Recommendation != "" {
			fmt.Println(d.Recommendation)
		}
	}

	if pred := view.Prediction(); pred.Err != "" {
		fmt.Printf("\nPrediction: %s\n", pred.Err)
	} else if pred.Data != nil {
		d := pred.Data
		fmt.Printf("\nRecommendation: %s (confidence %.0f%%)\n", d.Recommendation, d.ConfidenceScore*100)
		if d.Rationale != "" {
			fmt.Println(d.Rationale)
		}
		for _, h := range d.SupportingHeadlines {
			fmt.Printf("  - %s (%s)\n", h.Title, h.Source)
		}
	}
}
