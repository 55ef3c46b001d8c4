package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var app *App

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tariffnom",
	Short: "Calculate trade tariffs from the command line",
	Long: `tariffnom is a terminal client for the TariffNom tariff backend.

It calculates landed costs for a trade transaction, shows exchange-rate
trends and purchase recommendations, and includes a chat assistant that
suggests HS codes from a product description.

Examples:
  tariffnom login --username alice
  tariffnom calculate --import SG --export CN --hs-code 9603.21.00 --value 500 --mode sea
  tariffnom chat`,
	SilenceUsage: true,
}

// Execute builds the app from config and runs the CLI.
func Execute(cfg Config) error {
	ctx := context.Background()
	built, err := BuildApp(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialise client: %w", err)
	}
	app = built
	defer app.Shutdown()

	if app.Sessions.ConsumeSessionExpired(ctx) {
		fmt.Fprintln(os.Stderr, "Your session has expired. Please log in again.")
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(calculateCmd)
	rootCmd.AddCommand(countriesCmd)
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(adminCmd)
}
