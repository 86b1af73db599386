package conversationcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/soapy/cmd/soapy/storeopts"
	"github.com/papercomputeco/soapy/pkg/cliui"
	"github.com/papercomputeco/soapy/pkg/dotdir"
)

const deleteLongDesc string = `Delete a conversation and its repository.

Deleting an unknown conversation succeeds. If the conversation is selected
the selection is cleared.

Examples:
  soapy conversation delete team/support-42`

const deleteShortDesc string = "Delete a conversation"

type deleteCommander struct {
	opts storeopts.Options
}

func newDeleteCmd() *cobra.Command {
	cmder := &deleteCommander{}

	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   deleteShortDesc,
		Long:    deleteLongDesc,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmder.opts.Load(cmd); err != nil {
				return err
			}
			return cmder.run(cmd, args[0])
		},
	}

	storeopts.AddFlags(cmd, &cmder.opts)

	return cmd
}

func (c *deleteCommander) run(cmd *cobra.Command, id string) error {
	store, err := c.opts.Open(c.opts.Logger())
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.DeleteConversation(cmd.Context(), id); err != nil {
		return fmt.Errorf("deleting conversation: %w", err)
	}

	ddm := dotdir.NewManager()
	if sel, err := ddm.LoadSelection(c.opts.ConfigDir); err == nil && sel != nil && sel.ConversationID == id {
		if err := ddm.ClearSelection(c.opts.ConfigDir); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "  %s Deleted conversation %s\n", cliui.SuccessMark, cliui.KeyStyle.Render(id))
	return nil
}
