package gitrepo

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/papercomputeco/soapy/pkg/conversation"
)

const (
	suffixToolCall   = "tool_call"
	suffixToolResult = "tool_result"
)

// itemFilePattern matches NNNN-<kind>.md for every item kind.
var itemFilePattern = regexp.MustCompile(`^(\d{4,})-(user|assistant|system|tool|tool_call|tool_result)\.md$`)

var itemSuffixes = []string{
	string(conversation.RoleUser),
	string(conversation.RoleAssistant),
	string(conversation.RoleSystem),
	string(conversation.RoleTool),
	suffixToolCall,
	suffixToolResult,
}

func itemFileName(seq int, suffix string) string {
	return fmt.Sprintf("%04d-%s.md", seq, suffix)
}

// parseItemFileName returns the sequence number and kind encoded in name.
func parseItemFileName(name string) (int, conversation.Kind, bool) {
	m := itemFilePattern.FindStringSubmatch(name)
	if m == nil {
		return 0, "", false
	}

	seq, err := strconv.Atoi(m[1])
	if err != nil || seq < 1 {
		return 0, "", false
	}

	switch m[2] {
	case suffixToolCall:
		return seq, conversation.KindToolCall, true
	case suffixToolResult:
		return seq, conversation.KindToolResult, true
	default:
		return seq, conversation.KindMessage, true
	}
}

// scanMaxSequence lists dir and returns the highest sequence number among
// item files, or 0 when there are none.
func scanMaxSequence(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("listing %s: %w", dir, err)
	}

	highest := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if seq, _, ok := parseItemFileName(e.Name()); ok && seq > highest {
			highest = seq
		}
	}

	return highest, nil
}

// hasItemFile reports whether any item file with sequence number seq
// exists in dir.
func hasItemFile(dir string, seq int) bool {
	for _, suffix := range itemSuffixes {
		if _, err := os.Stat(filepath.Join(dir, itemFileName(seq, suffix))); err == nil {
			return true
		}
	}
	return false
}
