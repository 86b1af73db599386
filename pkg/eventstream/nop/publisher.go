// Package nop provides the publisher used when no event stream is
// configured. Storage mutations are validated and dropped.
package nop

import (
	"context"

	"github.com/papercomputeco/soapy/pkg/eventstream"
)

var _ eventstream.Publisher = (*Publisher)(nil)

type Publisher struct{}

func NewPublisher() *Publisher {
	return &Publisher{}
}

// Publish drops the event after validating it, so callers see the same
// input errors as with a real backend.
func (*Publisher) Publish(_ context.Context, event *eventstream.Event) error {
	return eventstream.Validate(event)
}

func (*Publisher) Close() error {
	return nil
}
