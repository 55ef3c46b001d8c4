package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tariffnom/tariffnom/internal/api"
	"github.com/tariffnom/tariffnom/internal/core/errx"
)

var (
	authUsername string
	authEmail    string
	authPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the tariff backend",
	RunE:  runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account on the tariff backend",
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.Sessions.Clear(cmd.Context()); err != nil {
			return err
		}
		app.Drafts.Reset()
		app.Nav.ForceLogin()
		fmt.Println("Logged out.")
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVarP(&authUsername, "username", "u", "", "account username")
		c.Flags().StringVarP(&authPassword, "password", "p", "", "account password (prompted when omitted)")
	}
	registerCmd.Flags().StringVarP(&authEmail, "email", "e", "", "account email")
}

func promptPassword() (string, error) {
	fmt.Print("Password: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	if authUsername == "" {
		return fmt.Errorf("--username is required")
	}
	password := authPassword
	if password == "" {
		var err error
		if password, err = promptPassword(); err != nil {
			return err
		}
	}

	resp, err := app.Client.Login(cmd.Context(), api.LoginRequest{
		Username: authUsername,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("%s", errx.DisplayMessage(err))
	}
	if err := app.Sessions.SaveCredentials(cmd.Context(), resp.Token, resp.User); err != nil {
		return err
	}
	if err := app.Nav.SignedIn(); err == nil {
		fmt.Printf("Welcome back, %s.\n", resp.User.Username)
	}
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	if authUsername == "" || authEmail == "" {
		return fmt.Errorf("--username and --email are required")
	}
	password := authPassword
	if password == "" {
		var err error
		if password, err = promptPassword(); err != nil {
			return err
		}
	}

	if err := app.Nav.ShowRegister(); err != nil {
		return err
	}
	resp, err := app.Client.Register(cmd.Context(), api.RegisterRequest{
		Username: authUsername,
		Email:    authEmail,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("%s", errx.DisplayMessage(err))
	}
	if err := app.Sessions.SaveCredentials(cmd.Context(), resp.Token, resp.User); err != nil {
		return err
	}
	if err := app.Nav.SignedIn(); err == nil {
		fmt.Printf("Account created. Welcome, %s.\n", resp.User.Username)
	}
	return nil
}
