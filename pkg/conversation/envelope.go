package conversation

import "fmt"

// Envelope is the external JSON shape of an Item: a type tag plus exactly
// one populated variant.
type Envelope struct {
	Type           Kind   `json:"type"`
	SequenceNumber int    `json:"sequenceNumber"`
	CommitHash     string `json:"commitHash"`

	Message    *Message    `json:"message,omitempty"`
	ToolCall   *ToolCall   `json:"toolCall,omitempty"`
	ToolResult *ToolResult `json:"toolResult,omitempty"`
}

// NewEnvelope wraps item for serialization.
func NewEnvelope(item Item) Envelope {
	env := Envelope{
		Type:           item.Kind(),
		SequenceNumber: item.Sequence(),
		CommitHash:     item.Commit(),
	}

	switch v := item.(type) {
	case *Message:
		env.Message = v
	case *ToolCall:
		env.ToolCall = v
	case *ToolResult:
		env.ToolResult = v
	}

	return env
}

// NewEnvelopes wraps every item, preserving order.
func NewEnvelopes(items []Item) []Envelope {
	out := make([]Envelope, 0, len(items))
	for _, item := range items {
		out = append(out, NewEnvelope(item))
	}
	return out
}

// Item unwraps the envelope back into its variant.
func (e Envelope) Item() (Item, error) {
	switch e.Type {
	case KindMessage:
		if e.Message != nil {
			return e.Message, nil
		}
	case KindToolCall:
		if e.ToolCall != nil {
			return e.ToolCall, nil
		}
	case KindToolResult:
		if e.ToolResult != nil {
			return e.ToolResult, nil
		}
	default:
		return nil, fmt.Errorf("unknown item type %q", e.Type)
	}
	return nil, fmt.Errorf("envelope of type %q has no payload", e.Type)
}
