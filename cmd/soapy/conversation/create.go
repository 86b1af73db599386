package conversationcmder

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/soapy/cmd/soapy/storeopts"
	"github.com/papercomputeco/soapy/pkg/cliui"
	"github.com/papercomputeco/soapy/pkg/conversation"
	"github.com/papercomputeco/soapy/pkg/dotdir"
)

const createLongDesc string = `Create a conversation.

Initializes a repository for the conversation and selects it for later
commands. A random id is generated when none is given.

Examples:
  soapy conversation create
  soapy conversation create team/support-42 --owner alice --org acme`

const createShortDesc string = "Create a conversation"

type createCommander struct {
	opts     storeopts.Options
	org      string
	owner    string
	noSelect bool
}

func newCreateCmd() *cobra.Command {
	cmder := &createCommander{}

	cmd := &cobra.Command{
		Use:   "create [id]",
		Short: createShortDesc,
		Long:  createLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmder.opts.Load(cmd); err != nil {
				return err
			}

			id := uuid.NewString()
			if len(args) == 1 {
				id = args[0]
			}
			return cmder.run(cmd, id)
		},
	}

	storeopts.AddFlags(cmd, &cmder.opts)
	cmd.Flags().StringVar(&cmder.org, "org", "", "Organization id recorded on the conversation")
	cmd.Flags().StringVar(&cmder.owner, "owner", "", "Owner id recorded on the conversation")
	cmd.Flags().BoolVar(&cmder.noSelect, "no-select", false, "Do not select the new conversation")

	return cmd
}

func (c *createCommander) run(cmd *cobra.Command, id string) error {
	log := c.opts.Logger()
	store, err := c.opts.Open(log)
	if err != nil {
		return err
	}
	defer store.Close()

	conv := &conversation.Conversation{
		ID:             id,
		OrganizationID: c.org,
		OwnerID:        c.owner,
	}
	if err := store.CreateConversation(cmd.Context(), conv); err != nil {
		return fmt.Errorf("creating conversation: %w", err)
	}

	if !c.noSelect {
		sel := &dotdir.Selection{ConversationID: id}
		if err := dotdir.NewManager().SaveSelection(sel, c.opts.ConfigDir); err != nil {
			return err
		}
	}

	printCreated(cmd.OutOrStdout(), id, store.Resolver.Resolve(id))
	return nil
}

func printCreated(w io.Writer, id, dir string) {
	fmt.Fprintf(w, "  %s Created conversation %s\n", cliui.SuccessMark, cliui.KeyStyle.Render(id))
	fmt.Fprintf(w, "    %s\n", cliui.DimStyle.Render(dir))
}
