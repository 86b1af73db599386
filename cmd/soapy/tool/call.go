package toolcmder

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	messagecmder "github.com/papercomputeco/soapy/cmd/soapy/message"
	"github.com/papercomputeco/soapy/cmd/soapy/storeopts"
	"github.com/papercomputeco/soapy/pkg/conversation"
)

const callShortDesc string = "Append a tool call"

type callCommander struct {
	opts           storeopts.Options
	conversationID string
	branch         string
	params         []string
	paramsJSON     string
}

func newCallCmd() *cobra.Command {
	cmder := &callCommander{}

	cmd := &cobra.Command{
		Use:   "call <tool-name>",
		Short: callShortDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmder.opts.Load(cmd); err != nil {
				return err
			}
			return cmder.run(cmd, args[0])
		},
	}

	storeopts.AddFlags(cmd, &cmder.opts)
	cmd.Flags().StringVarP(&cmder.conversationID, "conversation", "c", "", "Conversation id (default: the selected conversation)")
	cmd.Flags().StringVar(&cmder.branch, "branch", "", "Branch to append to")
	cmd.Flags().StringArrayVarP(&cmder.params, "param", "p", nil, "Parameter as key=value (repeatable)")
	cmd.Flags().StringVar(&cmder.paramsJSON, "params", "", "Parameters as a JSON object")

	return cmd
}

// parseParams merges the JSON object with key=value pairs; pairs win.
// Values that parse as JSON keep their type, anything else is a string.
func parseParams(paramsJSON string, pairs []string) (map[string]any, error) {
	params := map[string]any{}
	if paramsJSON != "" {
		if err := json.Unmarshal([]byte(paramsJSON), &params); err != nil {
			return nil, fmt.Errorf("parsing --params: %w", err)
		}
	}

	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q: expected key=value", pair)
		}

		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		params[key] = value
	}

	return params, nil
}

func (c *callCommander) run(cmd *cobra.Command, toolName string) error {
	id, branch, err := c.opts.Target(c.conversationID, c.branch)
	if err != nil {
		return err
	}

	params, err := parseParams(c.paramsJSON, c.params)
	if err != nil {
		return err
	}

	call := &conversation.ToolCall{
		ToolName:   toolName,
		Parameters: params,
	}
	if err := call.Validate(); err != nil {
		return err
	}

	store, err := c.opts.Open(c.opts.Logger())
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := store.CommitToolCall(cmd.Context(), id, call, branch)
	if err != nil {
		return fmt.Errorf("committing tool call: %w", err)
	}

	messagecmder.PrintCommit(cmd.OutOrStdout(), "tool call", result)
	return nil
}
