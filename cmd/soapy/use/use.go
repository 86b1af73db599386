// Package usecmder provides the use command, which selects the conversation
// and branch later commands act on.
package usecmder

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/soapy/cmd/soapy/storeopts"
	"github.com/papercomputeco/soapy/pkg/cliui"
	"github.com/papercomputeco/soapy/pkg/dotdir"
)

const useLongDesc string = `Select a conversation and optionally a branch.

The selection is stored in the .soapy/ directory. Commands that take
--conversation or --branch fall back to it. Without --branch, commands use
whichever branch the conversation has checked out.

Examples:
  soapy use team/support-42
  soapy use team/support-42 --branch alt
  soapy use --clear`

const useShortDesc string = "Select a conversation"

type useCommander struct {
	opts   storeopts.Options
	branch string
	clear  bool
}

func NewUseCmd() *cobra.Command {
	cmder := &useCommander{}

	cmd := &cobra.Command{
		Use:   "use [id]",
		Short: useShortDesc,
		Long:  useLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmder.opts.Load(cmd); err != nil {
				return err
			}

			if cmder.clear {
				return cmder.runClear(cmd)
			}
			if len(args) == 0 {
				return errors.New("a conversation id is required")
			}
			return cmder.run(cmd, args[0])
		},
	}

	storeopts.AddFlags(cmd, &cmder.opts)
	cmd.Flags().StringVar(&cmder.branch, "branch", "", "Branch to select")
	cmd.Flags().BoolVar(&cmder.clear, "clear", false, "Clear the selection")

	return cmd
}

func (c *useCommander) run(cmd *cobra.Command, id string) error {
	store, err := c.opts.Open(c.opts.Logger())
	if err != nil {
		return err
	}
	defer store.Close()

	exists, err := store.ConversationExists(cmd.Context(), id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("conversation not found: %s", id)
	}

	if c.branch != "" {
		// Reading the branch validates that it exists.
		if _, err := store.GetConversationItems(cmd.Context(), id, c.branch); err != nil {
			return err
		}
	}

	sel := &dotdir.Selection{ConversationID: id, Branch: c.branch}
	if err := dotdir.NewManager().SaveSelection(sel, c.opts.ConfigDir); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if c.branch != "" {
		fmt.Fprintf(w, "  %s Using %s on branch %s\n", cliui.SuccessMark, cliui.KeyStyle.Render(id), cliui.ValueStyle.Render(c.branch))
	} else {
		fmt.Fprintf(w, "  %s Using %s\n", cliui.SuccessMark, cliui.KeyStyle.Render(id))
	}
	return nil
}

func (c *useCommander) runClear(cmd *cobra.Command) error {
	if err := dotdir.NewManager().ClearSelection(c.opts.ConfigDir); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  %s Selection cleared\n", cliui.SuccessMark)
	return nil
}
