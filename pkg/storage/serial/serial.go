// Package serial wraps a storage.Driver so that operations on the same
// conversation never overlap. Different conversations proceed in parallel.
package serial

import (
	"context"
	"sync"

	"github.com/papercomputeco/soapy/pkg/conversation"
	"github.com/papercomputeco/soapy/pkg/storage"
)

// Driver serializes calls per conversation id.
type Driver struct {
	next storage.Driver

	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

var _ storage.Driver = (*Driver)(nil)

// New wraps next.
func New(next storage.Driver) *Driver {
	return &Driver{
		next:  next,
		locks: make(map[string]*entry),
	}
}

// lock blocks until id is free or ctx is done. Ids naming the same
// conversation share one lock. The returned func releases the lock.
func (d *Driver) lock(ctx context.Context, id string) (func(), error) {
	id = storage.CanonicalID(id)

	d.mu.Lock()
	e, ok := d.locks[id]
	if !ok {
		e = &entry{}
		d.locks[id] = e
	}
	e.refs++
	d.mu.Unlock()

	release := func() {
		d.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(d.locks, id)
		}
		d.mu.Unlock()
	}

	acquired := make(chan struct{})
	go func() {
		e.mu.Lock()
		close(acquired)
	}()

	select {
	case <-acquired:
		return func() {
			e.mu.Unlock()
			release()
		}, nil
	case <-ctx.Done():
		// Hand the lock back once the waiter gets it.
		go func() {
			<-acquired
			e.mu.Unlock()
			release()
		}()
		return nil, ctx.Err()
	}
}

func (d *Driver) CreateConversation(ctx context.Context, conv *conversation.Conversation) error {
	if conv == nil {
		return d.next.CreateConversation(ctx, conv)
	}

	unlock, err := d.lock(ctx, conv.ID)
	if err != nil {
		return err
	}
	defer unlock()
	return d.next.CreateConversation(ctx, conv)
}

func (d *Driver) ConversationExists(ctx context.Context, id string) (bool, error) {
	return d.next.ConversationExists(ctx, id)
}

func (d *Driver) GetConversation(ctx context.Context, id string) (*conversation.Conversation, error) {
	unlock, err := d.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return d.next.GetConversation(ctx, id)
}

func (d *Driver) DeleteConversation(ctx context.Context, id string) error {
	unlock, err := d.lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()
	return d.next.DeleteConversation(ctx, id)
}

// ListConversations only reads descriptors and is not serialized.
func (d *Driver) ListConversations(ctx context.Context) ([]*conversation.Conversation, error) {
	return d.next.ListConversations(ctx)
}

func (d *Driver) CommitMessage(ctx context.Context, id string, msg *conversation.Message, branch string) (*conversation.CommitResult, error) {
	unlock, err := d.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return d.next.CommitMessage(ctx, id, msg, branch)
}

func (d *Driver) CommitToolCall(ctx context.Context, id string, call *conversation.ToolCall, branch string) (*conversation.CommitResult, error) {
	unlock, err := d.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return d.next.CommitToolCall(ctx, id, call, branch)
}

func (d *Driver) CommitToolResult(ctx context.Context, id string, result *conversation.ToolResult, branch string) (*conversation.CommitResult, error) {
	unlock, err := d.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return d.next.CommitToolResult(ctx, id, result, branch)
}

func (d *Driver) GetConversationItems(ctx context.Context, id string, branch string) ([]conversation.Item, error) {
	unlock, err := d.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return d.next.GetConversationItems(ctx, id, branch)
}

func (d *Driver) GetMessages(ctx context.Context, id string, branch string) ([]*conversation.Message, error) {
	unlock, err := d.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return d.next.GetMessages(ctx, id, branch)
}

func (d *Driver) CreateBranch(ctx context.Context, id, name string, fromSequenceNumber int, creatorID string) (*conversation.BranchResult, error) {
	unlock, err := d.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return d.next.CreateBranch(ctx, id, name, fromSequenceNumber, creatorID)
}

func (d *Driver) GetBranches(ctx context.Context, id string) ([]*conversation.Branch, error) {
	unlock, err := d.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return d.next.GetBranches(ctx, id)
}

func (d *Driver) DeleteBranch(ctx context.Context, id, name string) error {
	unlock, err := d.lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()
	return d.next.DeleteBranch(ctx, id, name)
}

// Close closes the wrapped driver.
func (d *Driver) Close() error {
	return d.next.Close()
}
