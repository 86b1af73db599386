// Package conversationcmder provides the conversation command for creating,
// listing, showing and deleting stored conversations.
package conversationcmder

import (
	"github.com/spf13/cobra"
)

const conversationLongDesc string = `Manage stored conversations.

Each conversation is a git repository under the store's base path. Ids may
carry a namespace prefix ("team/3f2a..."); ids without one live in the
default namespace.

Examples:
  soapy conversation create
  soapy conversation create team/support-42 --owner alice
  soapy conversation list
  soapy conversation show --branch alt
  soapy conversation delete team/support-42`

const conversationShortDesc string = "Manage stored conversations"

func NewConversationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "conversation",
		Aliases: []string{"conv"},
		Short:   conversationShortDesc,
		Long:    conversationLongDesc,
	}

	cmd.AddCommand(newCreateCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newDeleteCmd())

	return cmd
}
