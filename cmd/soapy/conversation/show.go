package conversationcmder

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/soapy/cmd/soapy/storeopts"
	"github.com/papercomputeco/soapy/pkg/cliui"
	"github.com/papercomputeco/soapy/pkg/conversation"
)

const showLongDesc string = `Show the items of a conversation.

Prints every message, tool call and tool result of a branch in sequence
order. Without an id the selected conversation is shown; without --branch
the branch it has checked out. Message bodies are rendered as markdown on a
terminal.

Examples:
  soapy conversation show
  soapy conversation show team/support-42 --branch alt
  soapy conversation show --oneline`

const showShortDesc string = "Show the items of a conversation"

// onelineWidth is the body width of --oneline output.
const onelineWidth = 72

type showCommander struct {
	opts    storeopts.Options
	branch  string
	oneline bool
	plain   bool
}

func newShowCmd() *cobra.Command {
	cmder := &showCommander{}

	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: showShortDesc,
		Long:  showLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmder.opts.Load(cmd); err != nil {
				return err
			}

			var id string
			if len(args) == 1 {
				id = args[0]
			}
			return cmder.run(cmd, id)
		},
	}

	storeopts.AddFlags(cmd, &cmder.opts)
	cmd.Flags().StringVar(&cmder.branch, "branch", "", "Branch to show (default: the checked-out branch)")
	cmd.Flags().BoolVar(&cmder.oneline, "oneline", false, "Print one line per item")
	cmd.Flags().BoolVar(&cmder.plain, "plain", false, "Do not render markdown")

	return cmd
}

func (c *showCommander) run(cmd *cobra.Command, id string) error {
	id, branch, err := c.opts.Target(id, c.branch)
	if err != nil {
		return err
	}

	store, err := c.opts.Open(c.opts.Logger())
	if err != nil {
		return err
	}
	defer store.Close()

	conv, err := store.GetConversation(cmd.Context(), id)
	if err != nil {
		return err
	}

	items, err := store.GetConversationItems(cmd.Context(), id, branch)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	markdown := !c.plain && cliui.IsTerminal(os.Stdout) && w == os.Stdout

	if branch == "" {
		branch = cliui.DimStyle.Render("(checked out)")
	}
	fmt.Fprintf(w, "%s  %s %s\n\n", cliui.Heading(conv.ID), cliui.KeyStyle.Render("branch"), branch)

	PrintItems(w, items, c.oneline, markdown)
	return nil
}

// PrintItems writes items in sequence order, either one line each or as a
// header followed by the body.
func PrintItems(w io.Writer, items []conversation.Item, oneline, markdown bool) {
	if len(items) == 0 {
		fmt.Fprintf(w, "  %s\n", cliui.Muted("No items."))
		return
	}

	for _, item := range items {
		if oneline {
			fmt.Fprintln(w, cliui.ItemLine(item, onelineWidth))
			continue
		}
		fmt.Fprintln(w, cliui.ItemHeader(item))
		if body := cliui.ItemBody(item, markdown); body != "" {
			fmt.Fprintln(w, body)
		}
		fmt.Fprintln(w)
	}
}
