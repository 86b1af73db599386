package eventstream

import (
	"context"
	"errors"
)

var (
	// ErrNilEvent indicates a nil event payload was provided to a publisher.
	ErrNilEvent = errors.New("nil event")

	// ErrIncompleteEvent indicates an event without a type or conversation.
	// Such an event cannot be routed or keyed.
	ErrIncompleteEvent = errors.New("event needs a type and a conversation id")
)

// Publisher publishes storage events to an event stream backend.
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// Validate reports whether a publisher can accept event.
func Validate(event *Event) error {
	if event == nil {
		return ErrNilEvent
	}
	if event.EventType == "" || event.ConversationID == "" {
		return ErrIncompleteEvent
	}
	return nil
}
