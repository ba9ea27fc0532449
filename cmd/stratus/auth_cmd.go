package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stratus/internal/flags"
	"stratus/internal/ui/form"
)

type authFlags struct {
	username string
	email    string
	password string
}

func newLoginCmd(app *appContainer) *cobra.Command {
	cmdFlags := authFlags{}

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the remote service",
		Long: `Authenticates against the remote service with a username or email address
and stores the returned session token locally. Missing credentials are
collected interactively.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			credentials := cmdFlags.username
			password := cmdFlags.password

			if credentials == "" || password == "" {
				values, err := form.Run("Log in", []form.Field{
					{Key: "credentials", Label: "Username or email"},
					{Key: "password", Label: "Password", Secret: true},
				}, os.Stdin, os.Stdout)
				if err != nil {
					if errors.Is(err, form.ErrCancelled) {
						return nil
					}
					return err
				}
				if credentials == "" {
					credentials = values["credentials"]
				}
				if password == "" {
					password = values["password"]
				}
			}

			if err := app.Auth.Login(cmd.Context(), credentials, password); err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			id := app.Session.Identity()
			fmt.Printf("Logged in as %s (%s).\n", id.Username, id.Email)
			return nil
		},
	}
	loginCmd.Flags().StringVarP(&cmdFlags.username, flags.Username, flags.UserShort, "", "Username or email address")
	loginCmd.Flags().StringVar(&cmdFlags.password, flags.Password, "", "Password (prompted when omitted)")

	return loginCmd
}

func newRegisterCmd(app *appContainer) *cobra.Command {
	cmdFlags := authFlags{}

	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account on the remote service",
		Long:  `Registers a new account and logs straight into it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			username := cmdFlags.username
			email := cmdFlags.email
			password := cmdFlags.password
			confirmPassword := password

			if fields := registerFields(cmdFlags); len(fields) > 0 {
				values, err := form.Run("Register", fields, os.Stdin, os.Stdout)
				if err != nil {
					if errors.Is(err, form.ErrCancelled) {
						return nil
					}
					return err
				}
				if username == "" {
					username = values["username"]
				}
				if email == "" {
					email = values["email"]
				}
				if password == "" {
					password = values["password"]
					confirmPassword = values["confirmPassword"]
				}
			}

			if password != confirmPassword {
				return fmt.Errorf("passwords do not match")
			}

			err := app.Auth.Register(cmd.Context(), username, email, password, confirmPassword)
			if err != nil {
				return fmt.Errorf("registration failed: %w", err)
			}

			id := app.Session.Identity()
			fmt.Printf("Registered and logged in as %s (%s).\n", id.Username, id.Email)
			return nil
		},
	}
	registerCmd.Flags().StringVarP(&cmdFlags.username, flags.Username, flags.UserShort, "", "Username for the new account")
	registerCmd.Flags().StringVar(&cmdFlags.email, flags.Email, "", "Email address for the new account")
	registerCmd.Flags().StringVar(&cmdFlags.password, flags.Password, "", "Password (prompted when omitted)")

	return registerCmd
}

// registerFields returns the form fields the flags did not already provide.
// Password entry always prompts for a confirmation alongside it.
func registerFields(provided authFlags) []form.Field {
	var fields []form.Field
	if provided.username == "" {
		fields = append(fields, form.Field{Key: "username", Label: "Username"})
	}
	if provided.email == "" {
		fields = append(fields, form.Field{Key: "email", Label: "Email"})
	}
	if provided.password == "" {
		fields = append(fields,
			form.Field{Key: "password", Label: "Password", Secret: true},
			form.Field{Key: "confirmPassword", Label: "Confirm password", Secret: true},
		)
	}
	return fields
}

func newLogoutCmd(app *appContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.Session.LoggedIn() {
				fmt.Println("Not logged in.")
				return nil
			}
			if err := app.Auth.Logout(); err != nil {
				return fmt.Errorf("logout failed: %w", err)
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func newWhoamiCmd(app *appContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			id := app.Session.Identity()
			fmt.Printf("%s (%s), uid %s\n", id.Username, id.Email, id.UID)
			return nil
		},
	}
}

func newPasswdCmd(app *appContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "passwd",
		Short: "Change the account password",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}

			values, err := form.Run("Change password", []form.Field{
				{Key: "oldPassword", Label: "Current password", Secret: true},
				{Key: "password", Label: "New password", Secret: true},
				{Key: "confirmPassword", Label: "Confirm new password", Secret: true},
			}, os.Stdin, os.Stdout)
			if err != nil {
				if errors.Is(err, form.ErrCancelled) {
					return nil
				}
				return err
			}

			if values["password"] != values["confirmPassword"] {
				return fmt.Errorf("passwords do not match")
			}

			err = app.Auth.ChangePassword(cmd.Context(), values["oldPassword"], values["password"], values["confirmPassword"])
			if flushErr := app.Presenter.Flush(); flushErr != nil {
				return flushErr
			}
			if err != nil {
				// Business failures were already reported through the dialog.
				return asExitError(err)
			}
			return nil
		},
	}
}
