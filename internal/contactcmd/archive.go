package contactcmd

import (
	"fmt"

	"github.com/lehigh-university-libraries/contacts/internal/archive"
	"github.com/spf13/cobra"
)

// NewExportCmd creates the export command
func NewExportCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "export FILE",
		Short: "Write every contact to a .jsonl, .yaml or .parquet file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := archive.FormatFromPath(args[0]); err != nil {
				return err
			}
			a, err := opts.newApp(cmd)
			if err != nil {
				return err
			}

			all, err := archive.Collect(cmd.Context(), a.client, a.cfg.PageSize)
			if err != nil {
				a.sink.Failure("Export failed")
				return err
			}
			if err := archive.WriteFile(args[0], all); err != nil {
				return err
			}
			a.sink.Success(fmt.Sprintf("Exported %d contacts to %s", len(all), args[0]))
			return nil
		},
	}
}

// NewImportCmd creates the import command
func NewImportCmd(opts *Options) *cobra.Command {
	var keepIDs bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Save every contact from a .jsonl, .yaml or .parquet file",
		Long: `Save every contact from an export file.

By default each record is created as a new contact. With --keep-ids records
update the contact with the same id, or are inserted under it. Photos are not
imported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := archive.ReadFile(args[0])
			if err != nil {
				return err
			}
			a, err := opts.newApp(cmd)
			if err != nil {
				return err
			}

			summary, err := archive.Import(cmd.Context(), a.client, records, keepIDs)
			if refreshErr := a.lists.Refresh(cmd.Context()); refreshErr == nil {
				a.view.ShowList()
			}
			msg := fmt.Sprintf("Imported %d contacts (%d created, %d updated, %d failed)",
				summary.Created+summary.Updated, summary.Created, summary.Updated, summary.Failed)
			if err != nil {
				a.sink.Failure(msg)
				return err
			}
			a.sink.Success(msg)
			return nil
		},
	}

	cmd.Flags().BoolVar(&keepIDs, "keep-ids", false, "Save records under their exported ids")
	return cmd
}
