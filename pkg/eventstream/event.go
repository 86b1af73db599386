package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/soapy/pkg/conversation"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeItemCommitted is emitted after an item is committed.
	EventTypeItemCommitted = "soapy.item.committed"

	// EventTypeBranchCreated is emitted after a branch ref and its cache
	// entry are written.
	EventTypeBranchCreated = "soapy.branch.created"

	// EventTypeBranchDeleted is emitted after a branch is removed.
	EventTypeBranchDeleted = "soapy.branch.deleted"
)

// Event is a transport-neutral payload describing a storage mutation.
type Event struct {
	SchemaVersion  int       `json:"schema_version"`
	EventType      string    `json:"event_type"`
	EventID        string    `json:"event_id"`
	EmittedAt      time.Time `json:"emitted_at"`
	ConversationID string    `json:"conversation_id"`
	Branch         string    `json:"branch,omitempty"`

	// Item and Commit are set for EventTypeItemCommitted.
	Item   *conversation.Envelope     `json:"item,omitempty"`
	Commit *conversation.CommitResult `json:"commit,omitempty"`

	// SourceSequenceNumber is set for EventTypeBranchCreated.
	SourceSequenceNumber int `json:"source_sequence_number,omitempty"`
}

// NewItemCommitted builds the event for a freshly committed item.
func NewItemCommitted(conversationID, branch string, item conversation.Item, result *conversation.CommitResult) *Event {
	env := conversation.NewEnvelope(item)
	return &Event{
		SchemaVersion:  SchemaVersionV1,
		EventType:      EventTypeItemCommitted,
		EventID:        uuid.NewString(),
		EmittedAt:      time.Now().UTC(),
		ConversationID: conversationID,
		Branch:         branch,
		Item:           &env,
		Commit:         result,
	}
}

// NewBranchCreated builds the event for a new branch.
func NewBranchCreated(conversationID, branch string, fromSequenceNumber int) *Event {
	return &Event{
		SchemaVersion:        SchemaVersionV1,
		EventType:            EventTypeBranchCreated,
		EventID:              uuid.NewString(),
		EmittedAt:            time.Now().UTC(),
		ConversationID:       conversationID,
		Branch:               branch,
		SourceSequenceNumber: fromSequenceNumber,
	}
}

// NewBranchDeleted builds the event for a removed branch.
func NewBranchDeleted(conversationID, branch string) *Event {
	return &Event{
		SchemaVersion:  SchemaVersionV1,
		EventType:      EventTypeBranchDeleted,
		EventID:        uuid.NewString(),
		EmittedAt:      time.Now().UTC(),
		ConversationID: conversationID,
		Branch:         branch,
	}
}
