package conversationcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/soapy/cmd/soapy/storeopts"
	"github.com/papercomputeco/soapy/pkg/cliui"
	"github.com/papercomputeco/soapy/pkg/dotdir"
)

const listLongDesc string = `List stored conversations, newest first.

The selected conversation is marked with an asterisk.

Examples:
  soapy conversation list`

const listShortDesc string = "List stored conversations"

type listCommander struct {
	opts storeopts.Options
}

func newListCmd() *cobra.Command {
	cmder := &listCommander{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   listShortDesc,
		Long:    listLongDesc,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cmder.opts.Load(cmd); err != nil {
				return err
			}
			return cmder.run(cmd)
		},
	}

	storeopts.AddFlags(cmd, &cmder.opts)

	return cmd
}

func (c *listCommander) run(cmd *cobra.Command) error {
	store, err := c.opts.Open(c.opts.Logger())
	if err != nil {
		return err
	}
	defer store.Close()

	convs, err := store.ListConversations(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing conversations: %w", err)
	}

	w := cmd.OutOrStdout()
	if len(convs) == 0 {
		fmt.Fprintf(w, "  %s\n", cliui.DimStyle.Render("No conversations."))
		return nil
	}

	selected := ""
	if sel, err := dotdir.NewManager().LoadSelection(c.opts.ConfigDir); err == nil && sel != nil {
		selected = sel.ConversationID
	}

	for _, conv := range convs {
		marker := " "
		if conv.ID == selected {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s  %s  %s\n",
			marker,
			cliui.KeyStyle.Render(conv.ID),
			cliui.DimStyle.Render(conv.CreatedAt.Local().Format("2006-01-02 15:04")),
			cliui.ValueStyle.Render(conv.OwnerID),
		)
	}

	return nil
}
