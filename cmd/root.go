package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/lehigh-university-libraries/contacts/internal/contactcmd"
	"github.com/lehigh-university-libraries/contacts/internal/logging"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	opts := &contactcmd.Options{}

	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Manage an address book over the contacts REST API",
		Long: `Contacts lists, creates, edits and deletes contacts held by a contacts
REST API, including their profile photos.

Run "contacts serve" for a local development backend.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			if os.Getenv("NO_COLOR") != "" {
				opts.Log.NoColor = true
			}
			return logging.Setup(cmd.ErrOrStderr(), opts.Log)
		},
	}

	opts.AddFlags(cmd)

	addContactCmds(cmd, opts)
	cmd.AddCommand(newServeCmd())

	return cmd
}
