package toolcmder

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	messagecmder "github.com/papercomputeco/soapy/cmd/soapy/message"
	"github.com/papercomputeco/soapy/cmd/soapy/storeopts"
	"github.com/papercomputeco/soapy/pkg/conversation"
)

const resultShortDesc string = "Append a tool result"

type resultCommander struct {
	opts           storeopts.Options
	conversationID string
	branch         string
	status         string
	result         string
	retries        int
}

func newResultCmd() *cobra.Command {
	cmder := &resultCommander{}

	cmd := &cobra.Command{
		Use:   "result <tool-call-sequence-number>",
		Short: resultShortDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmder.opts.Load(cmd); err != nil {
				return err
			}

			seq, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid tool call sequence number %q", args[0])
			}
			return cmder.run(cmd, seq)
		},
	}

	storeopts.AddFlags(cmd, &cmder.opts)
	cmd.Flags().StringVarP(&cmder.conversationID, "conversation", "c", "", "Conversation id (default: the selected conversation)")
	cmd.Flags().StringVar(&cmder.branch, "branch", "", "Branch to append to")
	cmd.Flags().StringVarP(&cmder.status, "status", "s", string(conversation.ToolStatusSuccess), "Result status: success, error or timeout")
	cmd.Flags().StringVar(&cmder.result, "result", "", "Result payload as JSON; plain text is stored as a JSON string")
	cmd.Flags().IntVar(&cmder.retries, "retries", 0, "Number of retries before this result")

	return cmd
}

// resultPayload keeps valid JSON as is and quotes anything else.
func resultPayload(raw string) (json.RawMessage, error) {
	if raw == "" {
		return nil, nil
	}
	if json.Valid([]byte(raw)) {
		return json.RawMessage(raw), nil
	}
	quoted, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	return quoted, nil
}

func (c *resultCommander) run(cmd *cobra.Command, callSeq int) error {
	id, branch, err := c.opts.Target(c.conversationID, c.branch)
	if err != nil {
		return err
	}

	payload, err := resultPayload(c.result)
	if err != nil {
		return err
	}

	res := &conversation.ToolResult{
		ToolCallSequenceNumber: callSeq,
		Result:                 payload,
		Status:                 conversation.ToolStatus(c.status),
		RetryCount:             c.retries,
	}
	if err := res.Validate(); err != nil {
		return err
	}

	store, err := c.opts.Open(c.opts.Logger())
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := store.CommitToolResult(cmd.Context(), id, res, branch)
	if err != nil {
		return fmt.Errorf("committing tool result: %w", err)
	}

	messagecmder.PrintCommit(cmd.OutOrStdout(), "tool result", result)
	return nil
}
