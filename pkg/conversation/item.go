package conversation

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Kind tags the variant of an Item.
type Kind string

const (
	KindMessage    Kind = "message"
	KindToolCall   Kind = "tool_call"
	KindToolResult Kind = "tool_result"
)

// Role is the author role of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem, RoleTool:
		return true
	default:
		return false
	}
}

// ToolStatus is the execution outcome of a tool call.
type ToolStatus string

const (
	ToolStatusSuccess ToolStatus = "success"
	ToolStatusError   ToolStatus = "error"
	ToolStatusTimeout ToolStatus = "timeout"
)

// Valid reports whether s is one of the known statuses.
func (s ToolStatus) Valid() bool {
	switch s {
	case ToolStatusSuccess, ToolStatusError, ToolStatusTimeout:
		return true
	default:
		return false
	}
}

// Item is one committed entry of a conversation. It is a closed union:
// the only implementations are *Message, *ToolCall and *ToolResult, so
// consumers type switch on the concrete type.
type Item interface {
	Kind() Kind
	Sequence() int
	Commit() string
	isItem()
}

// Attachment describes a file attached to a message. Data carries an inline
// base64 payload on input only; once committed the bytes live under files/
// and Path points at them.
type Attachment struct {
	Filename    string `json:"filename" yaml:"filename"`
	ContentType string `json:"contentType" yaml:"contentType"`
	Size        int64  `json:"size" yaml:"size"`
	Path        string `json:"path,omitempty" yaml:"path,omitempty"`
	Data        string `json:"data,omitempty" yaml:"-"`
}

// Message is a chat message.
type Message struct {
	SequenceNumber int    `json:"sequenceNumber"`
	CommitHash     string `json:"commitHash"`

	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	AIProvider  *string      `json:"aiProvider,omitempty"`
	Model       *string      `json:"model,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`

	// ToolCalls are inline tool invocations. They are never written into the
	// message file; the appender commits each as its own ToolCall item.
	ToolCalls []ToolCall `json:"toolCalls,omitempty"`
}

func (m *Message) Kind() Kind     { return KindMessage }
func (m *Message) Sequence() int  { return m.SequenceNumber }
func (m *Message) Commit() string { return m.CommitHash }
func (*Message) isItem()          {}

// Validate checks the fields a caller must supply.
func (m *Message) Validate() error {
	if m == nil {
		return errors.New("message is nil")
	}
	if !m.Role.Valid() {
		return fmt.Errorf("invalid message role %q", m.Role)
	}
	for i, a := range m.Attachments {
		if a.Filename == "" {
			return fmt.Errorf("attachment %d: filename is required", i)
		}
	}
	return nil
}

// ToolCall is a request made by the model to run a tool.
type ToolCall struct {
	SequenceNumber int    `json:"sequenceNumber"`
	CommitHash     string `json:"commitHash"`

	ToolName    string         `json:"toolName"`
	Parameters  map[string]any `json:"parameters"`
	RequestedAt time.Time      `json:"requestedAt"`
}

func (c *ToolCall) Kind() Kind     { return KindToolCall }
func (c *ToolCall) Sequence() int  { return c.SequenceNumber }
func (c *ToolCall) Commit() string { return c.CommitHash }
func (*ToolCall) isItem()          {}

// Validate checks the fields a caller must supply.
func (c *ToolCall) Validate() error {
	if c == nil {
		return errors.New("tool call is nil")
	}
	if c.ToolName == "" {
		return errors.New("tool name is required")
	}
	return nil
}

// ToolResult is the outcome of executing a ToolCall.
type ToolResult struct {
	SequenceNumber int    `json:"sequenceNumber"`
	CommitHash     string `json:"commitHash"`

	// ToolCallSequenceNumber references the originating ToolCall.
	ToolCallSequenceNumber int             `json:"toolCallSequenceNumber"`
	Result                 json.RawMessage `json:"result"`
	Status                 ToolStatus      `json:"status"`
	RetryCount             int             `json:"retryCount"`
	ExecutedAt             time.Time       `json:"executedAt"`
}

func (r *ToolResult) Kind() Kind     { return KindToolResult }
func (r *ToolResult) Sequence() int  { return r.SequenceNumber }
func (r *ToolResult) Commit() string { return r.CommitHash }
func (*ToolResult) isItem()          {}

// Validate checks the fields a caller must supply.
func (r *ToolResult) Validate() error {
	if r == nil {
		return errors.New("tool result is nil")
	}
	if !r.Status.Valid() {
		return fmt.Errorf("invalid tool result status %q", r.Status)
	}
	if r.ToolCallSequenceNumber < 1 {
		return errors.New("tool call sequence number must be positive")
	}
	if r.RetryCount < 0 {
		return errors.New("retry count must not be negative")
	}
	if len(r.Result) > 0 && !json.Valid(r.Result) {
		return errors.New("result is not valid JSON")
	}
	return nil
}

// Messages filters items down to the message variant.
func Messages(items []Item) []*Message {
	msgs := make([]*Message, 0, len(items))
	for _, item := range items {
		if m, ok := item.(*Message); ok {
			msgs = append(msgs, m)
		}
	}
	return msgs
}
