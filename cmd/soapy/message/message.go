// Package messagecmder provides the message command for appending messages
// to a conversation.
package messagecmder

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/soapy/cmd/soapy/storeopts"
	"github.com/papercomputeco/soapy/pkg/cliui"
	"github.com/papercomputeco/soapy/pkg/conversation"
	"github.com/papercomputeco/soapy/pkg/utils"
)

const messageLongDesc string = `Append messages to a conversation.

Examples:
  soapy message add "What is the capital of France?"
  soapy message add --role assistant --model gpt-4o "Paris."
  echo "long prompt" | soapy message add -
  soapy message add --attach diagram.png "see attached"`

const messageShortDesc string = "Append messages to a conversation"

func NewMessageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "message",
		Aliases: []string{"msg"},
		Short:   messageShortDesc,
		Long:    messageLongDesc,
	}

	cmd.AddCommand(newAddCmd())

	return cmd
}

const addLongDesc string = `Append a message.

The content is the joined arguments, or standard input when the only
argument is "-". Each --attach file is stored under files/ in the
conversation repository.`

const addShortDesc string = "Append a message"

type addCommander struct {
	opts           storeopts.Options
	conversationID string
	branch         string
	role           string
	model          string
	provider       string
	attachments    []string
}

func newAddCmd() *cobra.Command {
	cmder := &addCommander{}

	cmd := &cobra.Command{
		Use:   "add <content...>",
		Short: addShortDesc,
		Long:  addLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmder.opts.Load(cmd); err != nil {
				return err
			}

			content, err := readContent(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			return cmder.run(cmd, content)
		},
	}

	storeopts.AddFlags(cmd, &cmder.opts)
	cmd.Flags().StringVarP(&cmder.conversationID, "conversation", "c", "", "Conversation id (default: the selected conversation)")
	cmd.Flags().StringVar(&cmder.branch, "branch", "", "Branch to append to (default: the selected or checked-out branch)")
	cmd.Flags().StringVarP(&cmder.role, "role", "r", string(conversation.RoleUser), "Message role: user, assistant, system or tool")
	cmd.Flags().StringVar(&cmder.model, "model", "", "Model that produced the message")
	cmd.Flags().StringVar(&cmder.provider, "provider", "", "AI provider that produced the message")
	cmd.Flags().StringArrayVar(&cmder.attachments, "attach", nil, "File to attach (repeatable)")

	return cmd
}

func readContent(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return strings.TrimRight(string(data), "\n"), nil
	}
	return strings.Join(args, " "), nil
}

func (c *addCommander) run(cmd *cobra.Command, content string) error {
	id, branch, err := c.opts.Target(c.conversationID, c.branch)
	if err != nil {
		return err
	}

	msg := &conversation.Message{
		Role:    conversation.Role(c.role),
		Content: content,
	}
	if c.model != "" {
		msg.Model = &c.model
	}
	if c.provider != "" {
		msg.AIProvider = &c.provider
	}
	for _, path := range c.attachments {
		a, err := loadAttachment(path)
		if err != nil {
			return err
		}
		msg.Attachments = append(msg.Attachments, a)
	}
	if err := msg.Validate(); err != nil {
		return err
	}

	store, err := c.opts.Open(c.opts.Logger())
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := store.CommitMessage(cmd.Context(), id, msg, branch)
	if err != nil {
		return fmt.Errorf("committing message: %w", err)
	}

	PrintCommit(cmd.OutOrStdout(), "message", result)
	return nil
}

func loadAttachment(path string) (conversation.Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return conversation.Attachment{}, fmt.Errorf("reading attachment: %w", err)
	}
	if len(data) == 0 {
		return conversation.Attachment{}, errors.New("attachment is empty: " + path)
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return conversation.Attachment{
		Filename:    filepath.Base(path),
		ContentType: contentType,
		Size:        int64(len(data)),
		Data:        base64.StdEncoding.EncodeToString(data),
	}, nil
}

// PrintCommit reports an appended item.
func PrintCommit(w io.Writer, kind string, result *conversation.CommitResult) {
	fmt.Fprintf(w, "  %s Committed %s %s %s\n",
		cliui.SuccessMark,
		kind,
		cliui.KeyStyle.Render(fmt.Sprintf("#%d", result.SequenceNumber)),
		cliui.DimStyle.Render(utils.ShortHash(result.CommitHash)),
	)
}
