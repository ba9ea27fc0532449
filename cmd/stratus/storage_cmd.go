package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"stratus/internal/flags"
	"stratus/internal/service"
	"stratus/internal/storage"
	"stratus/internal/ui/confirm"
)

// clipboardWrite is swapped out in tests; clipboard access needs a display.
var clipboardWrite = clipboard.WriteAll

type storageFlags struct {
	limit  int
	force  bool
	strict bool
	file   string

	id              string
	typeTag         string
	endpoint        string
	region          string
	accountID       string
	bucketName      string
	accessKeyID     string
	accessKeySecret string
	user            string
	password        string
	customPath      string
	accessURLPrefix string
	enabled         bool
}

func newStorageCmd(app *appContainer) *cobra.Command {
	cmdFlags := storageFlags{}

	storageCmd := &cobra.Command{
		Use:   "storage",
		Short: "Manage the storage configurations attached to your account",
		Long: `The storage command lists, creates, updates and deletes the cloud-storage
configurations stored on the remote service. Every subcommand requires a
logged-in session.`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List storage configurations",
		Long:  `Lists the account's storage configurations in server order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}

			configs, err := app.Storage.List(cmd.Context(), cmdFlags.limit)
			if err != nil {
				return fmt.Errorf("error listing storage configs: %w", err)
			}

			if len(configs) == 0 {
				fmt.Println("No storage configs found. Use 'stratus storage set' to add one.")
				return nil
			}
			fmt.Println(app.Formatter.FormatConfigList(configs))
			return nil
		},
	}
	listCmd.Flags().IntVarP(&cmdFlags.limit, flags.Limit, flags.LimitShort, service.DefaultListLimit, "Maximum number of configs to fetch")

	describeCmd := &cobra.Command{
		Use:   "describe [config-id]",
		Short: "Show one storage configuration in detail",
		Long: `Shows a single storage configuration including its backend-specific
fields. Secrets are masked.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}

			if _, err := app.Storage.List(cmd.Context(), cmdFlags.limit); err != nil {
				return fmt.Errorf("error listing storage configs: %w", err)
			}
			cfg, ok := app.Storage.ConfigByID(args[0])
			if !ok {
				return fmt.Errorf("storage config '%s' not found", args[0])
			}

			fmt.Println(app.Formatter.FormatConfigDetails(cfg))
			return nil
		},
	}

	typesCmd := &cobra.Command{
		Use:   "types",
		Short: "List the backend types the server currently supports",
		Long: `Fetches the enabled backend type set from the server. This set is
server-controlled and has changed across releases, so it is the source of
truth for what 'storage set --type' accepts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}

			types, err := app.Storage.EnabledTypes(cmd.Context())
			if err != nil {
				return fmt.Errorf("error fetching enabled types: %w", err)
			}
			fmt.Println(app.Formatter.FormatTypes(types))
			return nil
		},
	}

	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Create or update a storage configuration",
		Long: `Creates a new storage configuration, or updates an existing one when --id
is given. Which fields matter depends on the backend type; fields that do
not apply to the chosen type are ignored. Use --strict to also require the
type's own credential fields before submitting.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}

			cfg := storage.Config{
				ID:              cmdFlags.id,
				Type:            storage.Type(cmdFlags.typeTag),
				Endpoint:        cmdFlags.endpoint,
				Region:          cmdFlags.region,
				AccountID:       cmdFlags.accountID,
				BucketName:      cmdFlags.bucketName,
				AccessKeyID:     cmdFlags.accessKeyID,
				AccessKeySecret: cmdFlags.accessKeySecret,
				User:            cmdFlags.user,
				Password:        cmdFlags.password,
				CustomPath:      cmdFlags.customPath,
				AccessURLPrefix: cmdFlags.accessURLPrefix,
				IsEnabled:       storage.Flag(cmdFlags.enabled),
			}

			types, err := app.Storage.EnabledTypes(cmd.Context())
			if err != nil {
				return fmt.Errorf("error fetching enabled types: %w", err)
			}

			validator := storage.NewValidator(types)
			if cmdFlags.strict {
				err = validator.ValidateStrict(cfg)
			} else {
				err = validator.Validate(cfg)
			}
			if err != nil {
				printFieldErrors(err)
				return errReported
			}

			saved, err := app.Storage.CreateOrUpdate(cmd.Context(), cfg)
			if flushErr := app.Presenter.Flush(); flushErr != nil {
				return flushErr
			}
			if err != nil {
				return asExitError(err)
			}

			if cfg.Draft() {
				fmt.Printf("Created storage config %s.\n", saved.ID)
			}
			return nil
		},
	}
	setCmd.Flags().StringVar(&cmdFlags.id, flags.ID, "", "ID of an existing config to update (omit to create)")
	setCmd.Flags().StringVarP(&cmdFlags.typeTag, flags.Type, flags.TypeShort, "", "Backend type (see 'storage types')")
	setCmd.Flags().StringVar(&cmdFlags.endpoint, flags.Endpoint, "", "Service endpoint (oss, minio, webdav)")
	setCmd.Flags().StringVar(&cmdFlags.region, flags.Region, "", "Region (s3)")
	setCmd.Flags().StringVar(&cmdFlags.accountID, flags.AccountID, "", "Account ID (r2)")
	setCmd.Flags().StringVarP(&cmdFlags.bucketName, flags.Bucket, flags.BucketShort, "", "Bucket name")
	setCmd.Flags().StringVar(&cmdFlags.accessKeyID, flags.AccessKeyID, "", "Access key ID")
	setCmd.Flags().StringVar(&cmdFlags.accessKeySecret, flags.AccessKeySecret, "", "Access key secret")
	setCmd.Flags().StringVar(&cmdFlags.user, flags.User, "", "User (webdav)")
	setCmd.Flags().StringVar(&cmdFlags.password, flags.Password, "", "Password (webdav)")
	setCmd.Flags().StringVar(&cmdFlags.customPath, flags.CustomPath, "", "Path prefix uploads are namespaced under")
	setCmd.Flags().StringVar(&cmdFlags.accessURLPrefix, flags.AccessURLPrefix, "", "Public base URL for download links (required)")
	setCmd.Flags().BoolVar(&cmdFlags.enabled, flags.Enabled, true, "Whether the config is enabled")
	setCmd.Flags().BoolVar(&cmdFlags.strict, flags.Strict, false, "Also require the type's own fields before submitting")

	deleteCmd := &cobra.Command{
		Use:   "delete [config-id]",
		Short: "Delete a storage configuration",
		Long: `Deletes a storage configuration after an interactive confirmation. The
local list drops the entry as soon as the call is issued; a server-side
failure is reported but never undoes the local removal.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}
			id := args[0]

			var deleteErr error
			app.Dialog.Open(confirm.Request{
				Message: fmt.Sprintf("Delete storage config %q? This cannot be undone.", id),
				Kind:    confirm.KindConfirm,
				OnConfirm: func() {
					deleteErr = app.Storage.Delete(cmd.Context(), id)
				},
			})

			if cmdFlags.force {
				app.Presenter.AssumeYes(true)
			}
			if err := app.Presenter.Flush(); err != nil {
				return err
			}
			// Delete may have opened an error notification in turn.
			if err := app.Presenter.Flush(); err != nil {
				return err
			}
			if deleteErr != nil {
				return fmt.Errorf("error deleting storage config '%s': %w", id, deleteErr)
			}
			return nil
		},
	}
	deleteCmd.Flags().BoolVar(&cmdFlags.force, flags.Force, false, "Skip the confirmation prompt")

	copyConfigCmd := &cobra.Command{
		Use:   "copy-config",
		Short: "Copy the upload endpoint and token to the clipboard",
		Long: `Copies a small JSON document with the account's upload endpoint and API
token, ready to paste into an uploader's settings.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}

			payload := struct {
				API      string `json:"api"`
				APIToken string `json:"apiToken"`
			}{
				API:      app.API.BaseURL() + "/api/user/upload",
				APIToken: app.Session.Token(),
			}
			text, err := json.MarshalIndent(payload, "", "  ")
			if err != nil {
				return err
			}

			if err := clipboardWrite(string(text)); err != nil {
				app.Dialog.Open(confirm.Request{
					Message: "Failed to copy upload config to clipboard: " + err.Error(),
					Kind:    confirm.KindError,
				})
				if flushErr := app.Presenter.Flush(); flushErr != nil {
					return flushErr
				}
				return errReported
			}

			app.Dialog.Open(confirm.Request{
				Message: "Upload config copied to clipboard.",
				Kind:    confirm.KindSuccess,
			})
			return app.Presenter.Flush()
		},
	}

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export all storage configurations as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}

			out := os.Stdout
			if cmdFlags.file != "" {
				f, err := os.Create(cmdFlags.file)
				if err != nil {
					return fmt.Errorf("error creating export file: %w", err)
				}
				defer f.Close()
				out = f
			}

			count, err := app.Storage.ExportYAML(cmd.Context(), out)
			if err != nil {
				return fmt.Errorf("error exporting storage configs: %w", err)
			}
			if cmdFlags.file != "" {
				fmt.Printf("Exported %d storage configs to %s.\n", count, cmdFlags.file)
			}
			return nil
		},
	}
	exportCmd.Flags().StringVarP(&cmdFlags.file, flags.File, flags.FileShort, "", "Write to a file instead of stdout")

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import storage configurations from YAML",
		Long: `Replays a YAML export through the create/update endpoint. Entries with an
id update the matching config; entries without create new ones.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLogin(); err != nil {
				return err
			}

			in := os.Stdin
			if cmdFlags.file != "" {
				f, err := os.Open(cmdFlags.file)
				if err != nil {
					return fmt.Errorf("error opening import file: %w", err)
				}
				defer f.Close()
				in = f
			}

			count, err := app.Storage.ImportYAML(cmd.Context(), in)
			if flushErr := app.Presenter.Flush(); flushErr != nil {
				return flushErr
			}
			if err != nil {
				return fmt.Errorf("imported %d configs before failing: %w", count, err)
			}
			fmt.Printf("Imported %d storage configs.\n", count)
			return nil
		},
	}
	importCmd.Flags().StringVarP(&cmdFlags.file, flags.File, flags.FileShort, "", "Read from a file instead of stdin")

	storageCmd.AddCommand(listCmd, describeCmd, typesCmd, setCmd, deleteCmd, copyConfigCmd, exportCmd, importCmd)
	return storageCmd
}

// printFieldErrors renders field-keyed validation messages one per line, the
// console's stand-in for inline form errors.
func printFieldErrors(err error) {
	var fieldErrs storage.FieldErrors
	if !errors.As(err, &fieldErrs) {
		fmt.Println(err)
		return
	}

	keys := make([]string, 0, len(fieldErrs))
	for k := range fieldErrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Println("Invalid storage config:")
	for _, k := range keys {
		fmt.Printf("  %s: %s\n", k, fieldErrs[k])
	}
}
