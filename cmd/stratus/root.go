package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stratus/internal/api"
	"stratus/internal/flags"
)

// errReported marks a failure that was already surfaced through the
// confirmation dialog; it still fails the command but is not printed twice.
var errReported = errors.New("operation failed")

// asExitError collapses business errors into errReported. Transport and
// local errors pass through untouched.
func asExitError(err error) error {
	var be *api.BusinessError
	if errors.As(err, &be) {
		return errReported
	}
	return err
}

func newRootCmd(app *appContainer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stratus",
		Short: "Stratus is a command-line console for managing cloud-storage configurations.",
		Long: `A console for the storage configurations attached to your account on a
remote upload service. Log in, then list, create, update and delete the
object-storage, WebDAV and local-filesystem backends your uploads go to.
Stratus only manages credentials and settings; it never talks to the
storage providers themselves.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolP(flags.Debug, flags.DebugShort, false, "Enable verbose logging")

	rootCmd.AddCommand(
		newLoginCmd(app),
		newRegisterCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newPasswdCmd(app),
		newStorageCmd(app),
		newConfigCmd(app),
	)
	return rootCmd
}

func Execute(app *appContainer) {
	if err := newRootCmd(app).Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
