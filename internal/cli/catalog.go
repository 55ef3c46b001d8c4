package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tariffnom/tariffnom/internal/catalog"
)

var catalogFilter string

var countriesCmd = &cobra.Command{
	Use:   "countries",
	Short: "List the available countries",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCatalog(cmd, app.Countries, func(o catalog.Option) string {
			return fmt.Sprintf("%-4s %s", o.Code, o.Name)
		})
	},
}

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List the product catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCatalog(cmd, app.Products, func(o catalog.Option) string {
			return fmt.Sprintf("%-12s %s (%s)", o.Code, o.Description, o.Category)
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{countriesCmd, productsCmd} {
		c.Flags().StringVarP(&catalogFilter, "filter", "f", "", "case-insensitive substring filter")
	}
}

func runCatalog(cmd *cobra.Command, sel *catalog.Selector, render func(catalog.Option) string) error {
	if err := sel.Load(cmd.Context()); err != nil {
		// degraded state: show the classified error, then whatever
		// options (static fallback) remain usable
		fmt.Println(sel.ErrorMessage())
	}
	options := sel.Filter(catalogFilter)
	if len(options) == 0 {
		fmt.Println("No matching options.")
		return nil
	}
	for _, o := range options {
		fmt.Println(render(o))
	}
	return nil
}
