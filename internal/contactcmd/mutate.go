package contactcmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

// NewCreateCmd creates the create command. The record is saved first and
// the photo attached to the new id.
func NewCreateCmd(opts *Options) *cobra.Command {
	var sets []string
	var photo string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a contact, optionally with a photo",
		Example: `  contacts create \
    --set name="Ada Lovelace" --set title=Countess --set email=ada@example.com \
    --set phone=555-0100 --set address="1 Main St" --set status=Active \
    --photo ada.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			edits, err := parseAssignments(sets)
			if err != nil {
				return err
			}
			a, err := opts.newApp(cmd)
			if err != nil {
				return err
			}

			flow := a.creation()
			flow.Open()
			defer flow.Close()
			for _, e := range edits {
				if err := flow.SetField(e[0], e[1]); err != nil {
					return err
				}
			}
			if photo != "" {
				data, err := readPhoto(photo)
				if err != nil {
					return err
				}
				if err := flow.SelectPhoto(filepath.Base(photo), data); err != nil {
					return err
				}
			}

			if err := flow.Submit(cmd.Context()); err != nil {
				if id := flow.PendingID(); id != "" {
					return fmt.Errorf("%w (contact %s was saved without its photo)", err, id)
				}
				return err
			}
			a.view.ShowList()
			return a.view.err
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "Field assignment field=value (repeatable)")
	cmd.Flags().StringVar(&photo, "photo", "", "Path to a profile photo")
	return cmd
}

// NewUpdateCmd creates the update command
func NewUpdateCmd(opts *Options) *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:     "update ID",
		Short:   "Edit fields of an existing contact",
		Example: `  contacts update 3f2a... --set status=Inactive --set phone=555-0199`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			edits, err := parseAssignments(sets)
			if err != nil {
				return err
			}
			if len(edits) == 0 {
				return fmt.Errorf("nothing to update: pass at least one --set")
			}
			a, err := opts.newApp(cmd)
			if err != nil {
				return err
			}

			editor := a.editor()
			defer editor.Close()
			ctx := cmd.Context()
			if err := editor.Load(ctx, args[0]); err != nil {
				return err
			}
			for _, e := range edits {
				if err := editor.UpdateField(e[0], e[1]); err != nil {
					return err
				}
			}
			if err := editor.Submit(ctx); err != nil {
				return err
			}
			return a.view.err
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "Field assignment field=value (repeatable)")
	return cmd
}

// NewPhotoCmd creates the photo command
func NewPhotoCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "photo ID FILE",
		Short: "Replace the photo of a contact",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readPhoto(args[1])
			if err != nil {
				return err
			}
			a, err := opts.newApp(cmd)
			if err != nil {
				return err
			}

			editor := a.editor()
			defer editor.Close()
			ctx := cmd.Context()
			if err := editor.Load(ctx, args[0]); err != nil {
				return err
			}
			if err := editor.ChangePhoto(ctx, data, filepath.Base(args[1])); err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), a.view.format, editor.Contact())
		},
	}
}

// NewDeleteCmd creates the delete command
func NewDeleteCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(cmd)
			if err != nil {
				return err
			}

			editor := a.editor()
			defer editor.Close()
			ctx := cmd.Context()
			if err := editor.Load(ctx, args[0]); err != nil {
				return err
			}
			if err := editor.Delete(ctx); err != nil {
				return err
			}
			return a.view.err
		},
	}
}
