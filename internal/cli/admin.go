package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// The admin view itself is backend-owned; the client only gates entry on
// the authenticated user's role.
var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Enter the admin view (requires the ADMIN role)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.Nav.OpenAdmin(app.Sessions.IsAdmin()); err != nil {
			return err
		}
		defer func() { _ = app.Nav.CloseAdmin() }()

		user, _ := app.Sessions.User()
		fmt.Printf("Admin view. Signed in as %s (%s).\n", user.Username, user.Role)
		fmt.Println("Product and tariff management happens on the backend console.")
		return nil
	},
}
