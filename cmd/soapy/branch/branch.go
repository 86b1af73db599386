// Package branchcmder provides the branch command for forking, listing and
// deleting conversation branches.
package branchcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/soapy/cmd/soapy/storeopts"
	"github.com/papercomputeco/soapy/pkg/cliui"
)

const branchLongDesc string = `Manage conversation branches.

A branch forks the checked-out branch after a given item. Appending to a
branch never changes its parent. The main branch cannot be deleted.

Examples:
  soapy branch create retry --from 3
  soapy branch list
  soapy message add --branch retry "try again, more concise"
  soapy branch delete retry`

const branchShortDesc string = "Manage conversation branches"

// branchCommander holds the flags every branch subcommand shares.
type branchCommander struct {
	opts           storeopts.Options
	conversationID string
}

func (c *branchCommander) addFlags(cmd *cobra.Command) {
	storeopts.AddFlags(cmd, &c.opts)
	cmd.Flags().StringVarP(&c.conversationID, "conversation", "c", "", "Conversation id (default: the selected conversation)")
}

func (c *branchCommander) target(cmd *cobra.Command) (string, error) {
	if err := c.opts.Load(cmd); err != nil {
		return "", err
	}
	id, _, err := c.opts.Target(c.conversationID, "")
	return id, err
}

func NewBranchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "branch",
		Short: branchShortDesc,
		Long:  branchLongDesc,
	}

	cmd.AddCommand(newCreateCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newDeleteCmd())

	return cmd
}

func newCreateCmd() *cobra.Command {
	cmder := &branchCommander{}
	var (
		from    int
		creator string
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Fork the conversation after an item",
		Long: `Fork the checked-out branch after the item numbered --from.

Without --from, or when no item has that number, the branch starts at the
latest item.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cmder.target(cmd)
			if err != nil {
				return err
			}

			store, err := cmder.opts.Open(cmder.opts.Logger())
			if err != nil {
				return err
			}
			defer store.Close()

			result, err := store.CreateBranch(cmd.Context(), id, args[0], from, creator)
			if err != nil {
				return fmt.Errorf("creating branch: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "  %s Created %s\n", cliui.SuccessMark, cliui.KeyStyle.Render(result.BranchRef))
			return nil
		},
	}

	cmder.addFlags(cmd)
	cmd.Flags().IntVar(&from, "from", 0, "Sequence number of the item the branch diverges after")
	cmd.Flags().StringVar(&creator, "creator", "", "Creator id recorded on the branch")

	return cmd
}

func newListCmd() *cobra.Command {
	cmder := &branchCommander{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the branches of a conversation",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := cmder.target(cmd)
			if err != nil {
				return err
			}

			store, err := cmder.opts.Open(cmder.opts.Logger())
			if err != nil {
				return err
			}
			defer store.Close()

			branches, err := store.GetBranches(cmd.Context(), id)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(branches) == 0 {
				fmt.Fprintf(w, "  %s\n", cliui.DimStyle.Render("No branches besides main."))
				return nil
			}

			for _, b := range branches {
				fmt.Fprintf(w, "  %s  %s  %s  %s\n",
					cliui.KeyStyle.Render(b.Name),
					cliui.ValueStyle.Render(fmt.Sprintf("from #%d", b.SourceSequenceNumber)),
					cliui.ValueStyle.Render(fmt.Sprintf("%d items", b.MessageCount)),
					cliui.DimStyle.Render(b.CreatedAt.Local().Format("2006-01-02 15:04")),
				)
			}
			return nil
		},
	}

	cmder.addFlags(cmd)

	return cmd
}

func newDeleteCmd() *cobra.Command {
	cmder := &branchCommander{}

	cmd := &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a branch",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cmder.target(cmd)
			if err != nil {
				return err
			}

			store, err := cmder.opts.Open(cmder.opts.Logger())
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.DeleteBranch(cmd.Context(), id, args[0]); err != nil {
				return fmt.Errorf("deleting branch: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "  %s Deleted branch %s\n", cliui.SuccessMark, cliui.KeyStyle.Render(args[0]))
			return nil
		},
	}

	cmder.addFlags(cmd)

	return cmd
}
