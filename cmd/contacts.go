package cmd

import (
	"github.com/lehigh-university-libraries/contacts/internal/contactcmd"
	"github.com/spf13/cobra"
)

func addContactCmds(cmd *cobra.Command, opts *contactcmd.Options) {
	cmd.AddCommand(contactcmd.NewListCmd(opts))
	cmd.AddCommand(contactcmd.NewGetCmd(opts))
	cmd.AddCommand(contactcmd.NewCreateCmd(opts))
	cmd.AddCommand(contactcmd.NewUpdateCmd(opts))
	cmd.AddCommand(contactcmd.NewPhotoCmd(opts))
	cmd.AddCommand(contactcmd.NewDeleteCmd(opts))
	cmd.AddCommand(contactcmd.NewExportCmd(opts))
	cmd.AddCommand(contactcmd.NewImportCmd(opts))
}
