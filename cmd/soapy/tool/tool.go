// Package toolcmder provides the tool command for appending tool calls and
// tool results to a conversation.
package toolcmder

import (
	"github.com/spf13/cobra"
)

const toolLongDesc string = `Append tool calls and tool results to a conversation.

Tool calls and results share the conversation's sequence numbers with
messages. A result references the sequence number of its call.

Examples:
  soapy tool call web_search --param query="golang generics"
  soapy tool call fetch --params '{"url":"https://go.dev","timeout":5}'
  soapy tool result 2 --status success --result '{"hits":12}'
  soapy tool result 4 --status timeout --retries 3`

const toolShortDesc string = "Append tool calls and results"

func NewToolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tool",
		Short: toolShortDesc,
		Long:  toolLongDesc,
	}

	cmd.AddCommand(newCallCmd())
	cmd.AddCommand(newResultCmd())

	return cmd
}
