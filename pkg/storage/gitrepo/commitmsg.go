package gitrepo

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/papercomputeco/soapy/pkg/conversation"
)

// Commit subjects encode the sequence number of the item they introduce.
// Branch creation locates its root commit by parsing them back.
var commitSequencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^Message #(\d+): `),
	regexp.MustCompile(`^Tool call #(\d+): `),
	regexp.MustCompile(`^Tool result #(\d+): `),
}

func initCommitMessage(id string) string {
	return "Initialize conversation " + id
}

func messageCommitMessage(seq int, role conversation.Role) string {
	return fmt.Sprintf("Message #%d: %s", seq, role)
}

func toolCallCommitMessage(seq int, toolName string) string {
	return fmt.Sprintf("Tool call #%d: %s", seq, toolName)
}

func toolResultCommitMessage(seq int, status conversation.ToolStatus) string {
	return fmt.Sprintf("Tool result #%d: %s", seq, status)
}

// parseCommitSequence extracts the item sequence number from a commit
// message, trying message, tool call and tool result subjects in turn.
func parseCommitSequence(message string) (int, bool) {
	for _, p := range commitSequencePatterns {
		m := p.FindStringSubmatch(message)
		if m == nil {
			continue
		}
		seq, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return seq, true
	}

	return 0, false
}
