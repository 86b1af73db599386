package testutils

import (
	"context"
	"errors"

	"github.com/papercomputeco/soapy/pkg/conversation"
	"github.com/papercomputeco/soapy/pkg/storage"
)

var (
	errMockPublish = errors.New("mock publish failure")

	// ErrMockStorage is returned by FailingDriver.
	ErrMockStorage = errors.New("mock storage failure")
)

// FailingDriver wraps a storage.Driver and fails selected operations with
// ErrMockStorage.
type FailingDriver struct {
	storage.Driver

	FailCommit bool
	FailRead   bool
	FailList   bool
}

func (d *FailingDriver) ListConversations(ctx context.Context) ([]*conversation.Conversation, error) {
	if d.FailList {
		return nil, ErrMockStorage
	}
	return d.Driver.ListConversations(ctx)
}

func (d *FailingDriver) CommitMessage(ctx context.Context, id string, msg *conversation.Message, branch string) (*conversation.CommitResult, error) {
	if d.FailCommit {
		return nil, ErrMockStorage
	}
	return d.Driver.CommitMessage(ctx, id, msg, branch)
}

func (d *FailingDriver) GetConversationItems(ctx context.Context, id string, branch string) ([]conversation.Item, error) {
	if d.FailRead {
		return nil, ErrMockStorage
	}
	return d.Driver.GetConversationItems(ctx, id, branch)
}
