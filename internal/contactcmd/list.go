package contactcmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewListCmd creates the list command
func NewListCmd(opts *Options) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of contacts",
		Example: `  # First page with the configured page size
  contacts list

  # Third page as JSON
  contacts list --page 3 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if page < 1 {
				return fmt.Errorf("--page must be at least 1")
			}
			a, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			if err := a.lists.Show(cmd.Context(), page-1); err != nil {
				return err
			}
			a.view.ShowList()
			return a.view.err
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number, starting at 1")
	return cmd
}

// NewGetCmd creates the get command
func NewGetCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show a single contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(cmd)
			if err != nil {
				return err
			}
			editor := a.editor()
			defer editor.Close()
			if err := editor.Load(cmd.Context(), args[0]); err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), a.view.format, editor.Contact())
		},
	}
}
