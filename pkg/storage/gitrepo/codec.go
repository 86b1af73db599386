package gitrepo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/papercomputeco/soapy/pkg/conversation"
)

// Item files are a "---" bounded header of key: value pairs, a blank line,
// then the free-form body. Structured values are written as indented JSON,
// which the YAML decoder reads back as flow collections.

const (
	headerFence = "---"
	jsonIndent  = "  "
)

var (
	errNoHeader           = errors.New("missing header block")
	errUnterminatedHeader = errors.New("unterminated header block")

	// plainScalarPattern matches strings that can be written without quotes.
	plainScalarPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 ._/+@()-]*$`)
)

// scalar renders s as a header value, JSON-quoting anything that isn't a
// plain token. JSON strings are valid YAML double-quoted scalars.
func scalar(s string) string {
	if plainScalarPattern.MatchString(s) && !strings.HasSuffix(s, " ") && !strings.EqualFold(s, "null") {
		return s
	}

	quoted, _ := json.Marshal(s)
	return string(quoted)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// writeJSONField writes "key:" followed by v as JSON indented under it.
func writeJSONField(b *bytes.Buffer, key string, v any) error {
	data, err := json.MarshalIndent(v, jsonIndent, jsonIndent)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}

	b.WriteString(key)
	b.WriteString(":\n")
	b.WriteString(jsonIndent)
	b.Write(data)
	b.WriteString("\n")
	return nil
}

func closeHeader(b *bytes.Buffer, body string) []byte {
	b.WriteString(headerFence)
	b.WriteString("\n\n")
	b.WriteString(body)
	return b.Bytes()
}

func encodeMessage(m *conversation.Message) []byte {
	var b bytes.Buffer
	b.WriteString(headerFence + "\n")
	fmt.Fprintf(&b, "role: %s\n", scalar(string(m.Role)))
	fmt.Fprintf(&b, "timestamp: %s\n", formatTime(m.Timestamp))
	if m.AIProvider != nil {
		fmt.Fprintf(&b, "aiProvider: %s\n", scalar(*m.AIProvider))
	}
	if m.Model != nil {
		fmt.Fprintf(&b, "model: %s\n", scalar(*m.Model))
	}

	if len(m.Attachments) == 0 {
		b.WriteString("attachments: []\n")
	} else {
		b.WriteString("attachments:\n")
		for _, a := range m.Attachments {
			fmt.Fprintf(&b, "  - filename: %s\n", scalar(a.Filename))
			fmt.Fprintf(&b, "    contentType: %s\n", scalar(a.ContentType))
			fmt.Fprintf(&b, "    size: %d\n", a.Size)
			fmt.Fprintf(&b, "    path: %s\n", scalar(a.Path))
		}
	}

	return closeHeader(&b, m.Content)
}

func encodeToolCall(c *conversation.ToolCall) ([]byte, error) {
	params := c.Parameters
	if params == nil {
		params = map[string]any{}
	}

	var b bytes.Buffer
	b.WriteString(headerFence + "\n")
	fmt.Fprintf(&b, "toolName: %s\n", scalar(c.ToolName))
	fmt.Fprintf(&b, "requestedAt: %s\n", formatTime(c.RequestedAt))
	if err := writeJSONField(&b, "parameters", params); err != nil {
		return nil, err
	}

	return closeHeader(&b, ""), nil
}

func encodeToolResult(r *conversation.ToolResult) ([]byte, error) {
	var result any
	if len(r.Result) > 0 {
		if err := json.Unmarshal(r.Result, &result); err != nil {
			return nil, fmt.Errorf("decoding result: %w", err)
		}
	}

	var b bytes.Buffer
	b.WriteString(headerFence + "\n")
	fmt.Fprintf(&b, "toolCallSequenceNumber: %d\n", r.ToolCallSequenceNumber)
	fmt.Fprintf(&b, "status: %s\n", scalar(string(r.Status)))
	fmt.Fprintf(&b, "retryCount: %d\n", r.RetryCount)
	fmt.Fprintf(&b, "executedAt: %s\n", formatTime(r.ExecutedAt))
	if err := writeJSONField(&b, "result", result); err != nil {
		return nil, err
	}

	return closeHeader(&b, ""), nil
}

// splitHeader separates the bounded header from the body. The blank line
// after the closing fence is consumed.
func splitHeader(data []byte) ([]byte, string, error) {
	text := string(data)
	if !strings.HasPrefix(text, headerFence+"\n") {
		return nil, "", errNoHeader
	}
	rest := text[len(headerFence)+1:]

	var header, after string
	switch {
	case strings.HasPrefix(rest, headerFence+"\n"):
		after = rest[len(headerFence)+1:]
	case rest == headerFence:
	default:
		if idx := strings.Index(rest, "\n"+headerFence+"\n"); idx >= 0 {
			header = rest[:idx+1]
			after = rest[idx+len(headerFence)+2:]
		} else if strings.HasSuffix(rest, "\n"+headerFence) {
			header = rest[:len(rest)-len(headerFence)]
		} else {
			return nil, "", errUnterminatedHeader
		}
	}

	return []byte(header), strings.TrimPrefix(after, "\n"), nil
}

type messageHeader struct {
	Role        string                    `yaml:"role"`
	Timestamp   string                    `yaml:"timestamp"`
	AIProvider  *string                   `yaml:"aiProvider"`
	Model       *string                   `yaml:"model"`
	Attachments []conversation.Attachment `yaml:"attachments"`
}

type toolCallHeader struct {
	ToolName    string         `yaml:"toolName"`
	RequestedAt string         `yaml:"requestedAt"`
	Parameters  map[string]any `yaml:"parameters"`
}

type toolResultHeader struct {
	ToolCallSequenceNumber int    `yaml:"toolCallSequenceNumber"`
	Status                 string `yaml:"status"`
	RetryCount             int    `yaml:"retryCount"`
	ExecutedAt             string `yaml:"executedAt"`
	Result                 any    `yaml:"result"`
}

func parseTime(field, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %s: %w", field, err)
	}
	return t, nil
}

// decodeItem parses an item file whose name has already been matched.
func decodeItem(kind conversation.Kind, seq int, data []byte) (conversation.Item, error) {
	header, body, err := splitHeader(data)
	if err != nil {
		return nil, err
	}

	switch kind {
	case conversation.KindMessage:
		return decodeMessage(seq, header, body)
	case conversation.KindToolCall:
		return decodeToolCall(seq, header)
	case conversation.KindToolResult:
		return decodeToolResult(seq, header)
	default:
		return nil, fmt.Errorf("unknown item kind %q", kind)
	}
}

func decodeMessage(seq int, header []byte, body string) (*conversation.Message, error) {
	var h messageHeader
	if err := yaml.Unmarshal(header, &h); err != nil {
		return nil, fmt.Errorf("decoding message header: %w", err)
	}

	role := conversation.Role(h.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("invalid role %q", h.Role)
	}

	ts, err := parseTime("timestamp", h.Timestamp)
	if err != nil {
		return nil, err
	}

	return &conversation.Message{
		SequenceNumber: seq,
		Role:           role,
		Content:        body,
		Timestamp:      ts,
		AIProvider:     h.AIProvider,
		Model:          h.Model,
		Attachments:    h.Attachments,
	}, nil
}

func decodeToolCall(seq int, header []byte) (*conversation.ToolCall, error) {
	var h toolCallHeader
	if err := yaml.Unmarshal(header, &h); err != nil {
		return nil, fmt.Errorf("decoding tool call header: %w", err)
	}
	if h.ToolName == "" {
		return nil, errors.New("missing toolName")
	}

	requestedAt, err := parseTime("requestedAt", h.RequestedAt)
	if err != nil {
		return nil, err
	}

	params := h.Parameters
	if params == nil {
		params = map[string]any{}
	}

	return &conversation.ToolCall{
		SequenceNumber: seq,
		ToolName:       h.ToolName,
		Parameters:     params,
		RequestedAt:    requestedAt,
	}, nil
}

func decodeToolResult(seq int, header []byte) (*conversation.ToolResult, error) {
	var h toolResultHeader
	if err := yaml.Unmarshal(header, &h); err != nil {
		return nil, fmt.Errorf("decoding tool result header: %w", err)
	}

	status := conversation.ToolStatus(h.Status)
	if !status.Valid() {
		return nil, fmt.Errorf("invalid status %q", h.Status)
	}

	executedAt, err := parseTime("executedAt", h.ExecutedAt)
	if err != nil {
		return nil, err
	}

	result, err := json.Marshal(h.Result)
	if err != nil {
		return nil, fmt.Errorf("re-encoding result: %w", err)
	}

	return &conversation.ToolResult{
		SequenceNumber:         seq,
		ToolCallSequenceNumber: h.ToolCallSequenceNumber,
		Result:                 result,
		Status:                 status,
		RetryCount:             h.RetryCount,
		ExecutedAt:             executedAt,
	}, nil
}
