package cliui

import (
	"encoding/json"
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/papercomputeco/soapy/pkg/conversation"
	"github.com/papercomputeco/soapy/pkg/utils"
)

var (
	seqStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	roleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	toolStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	headingStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

// ItemHeader renders the one line summary of an item: sequence number,
// kind or role, time and abbreviated commit.
func ItemHeader(item conversation.Item) string {
	var label, when string
	switch v := item.(type) {
	case *conversation.Message:
		label = roleStyle.Render(string(v.Role))
		when = v.Timestamp.Local().Format("2006-01-02 15:04:05")
		if v.Model != nil {
			label += " " + mutedStyle.Render("("+*v.Model+")")
		}
	case *conversation.ToolCall:
		label = toolStyle.Render("tool call " + v.ToolName)
		when = v.RequestedAt.Local().Format("2006-01-02 15:04:05")
	case *conversation.ToolResult:
		status := string(v.Status)
		if v.Status != conversation.ToolStatusSuccess {
			status = errorStyle.Render(status)
		}
		label = toolStyle.Render(fmt.Sprintf("tool result for #%d", v.ToolCallSequenceNumber)) + " " + status
		when = v.ExecutedAt.Local().Format("2006-01-02 15:04:05")
	}

	commit := utils.ShortHash(item.Commit())

	return fmt.Sprintf("%s %s %s",
		seqStyle.Render(fmt.Sprintf("#%d", item.Sequence())),
		label,
		mutedStyle.Render(strings.TrimSpace(when+" "+commit)),
	)
}

// ItemBody renders the payload of an item. Message content is rendered as
// markdown when markdown is true; structured payloads are indented JSON.
func ItemBody(item conversation.Item, markdown bool) string {
	switch v := item.(type) {
	case *conversation.Message:
		body := v.Content
		for _, a := range v.Attachments {
			body += fmt.Sprintf("\n[attachment %s %s, %d bytes]", a.Filename, a.ContentType, a.Size)
		}
		if markdown {
			if rendered, err := RenderMarkdown(body); err == nil {
				return strings.TrimRight(rendered, "\n")
			}
		}
		return body
	case *conversation.ToolCall:
		return indentJSON(v.Parameters)
	case *conversation.ToolResult:
		var result any
		if err := json.Unmarshal(v.Result, &result); err != nil {
			return string(v.Result)
		}
		return indentJSON(result)
	default:
		return ""
	}
}

// ItemLine renders an item as a single line for compact listings.
func ItemLine(item conversation.Item, width int) string {
	body := strings.Join(strings.Fields(ItemBody(item, false)), " ")
	return ItemHeader(item) + "  " + utils.Truncate(body, width)
}

// Heading renders a section title.
func Heading(s string) string {
	return headingStyle.Render(s)
}

// Muted renders secondary text.
func Muted(s string) string {
	return mutedStyle.Render(s)
}

func indentJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
