// Package testutils holds test doubles shared across soapy packages.
package testutils

import (
	"context"
	"sync"

	"github.com/papercomputeco/soapy/pkg/eventstream"
)

// MockPublisher is an eventstream publisher that records published events
// and returns configurable results.
type MockPublisher struct {
	mu sync.Mutex

	// Events accumulates all events passed to Publish.
	Events []*eventstream.Event

	// FailPublish causes Publish to return an error after recording.
	FailPublish bool

	// Closed is set once Close is called.
	Closed bool
}

// Publish records the event.
func (p *MockPublisher) Publish(_ context.Context, event *eventstream.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := eventstream.Validate(event); err != nil {
		return err
	}
	p.Events = append(p.Events, event)

	if p.FailPublish {
		return errMockPublish
	}
	return nil
}

// Close marks the publisher closed.
func (p *MockPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Closed = true
	return nil
}

// EventTypes returns the type of every recorded event in order.
func (p *MockPublisher) EventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	types := make([]string, 0, len(p.Events))
	for _, e := range p.Events {
		types = append(types, e.EventType)
	}
	return types
}
