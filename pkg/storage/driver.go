// Package storage defines the operation set of the conversation storage
// engine and the typed errors it returns.
package storage

import (
	"context"

	"github.com/papercomputeco/soapy/pkg/conversation"
)

// Driver is the narrow interface gateways and the CLI consume. Every
// implementation assumes a single logical writer per conversation; wrap a
// Driver with the serial package when concurrent callers can reach it.
type Driver interface {
	// CreateConversation initializes storage for a new conversation.
	// Returns ErrAlreadyExists if the conversation is already present.
	CreateConversation(ctx context.Context, conv *conversation.Conversation) error

	// ConversationExists reports whether the conversation has storage.
	ConversationExists(ctx context.Context, id string) (bool, error)

	// GetConversation loads the conversation descriptor. The returned ID is
	// always the id passed in.
	GetConversation(ctx context.Context, id string) (*conversation.Conversation, error)

	// DeleteConversation removes all storage for the conversation. It is
	// idempotent.
	DeleteConversation(ctx context.Context, id string) error

	// ListConversations returns every readable conversation, newest first.
	ListConversations(ctx context.Context) ([]*conversation.Conversation, error)

	// CommitMessage appends a message. An empty branch appends to whatever
	// branch is currently active.
	CommitMessage(ctx context.Context, id string, msg *conversation.Message, branch string) (*conversation.CommitResult, error)

	// CommitToolCall appends a tool call.
	CommitToolCall(ctx context.Context, id string, call *conversation.ToolCall, branch string) (*conversation.CommitResult, error)

	// CommitToolResult appends a tool result.
	CommitToolResult(ctx context.Context, id string, result *conversation.ToolResult, branch string) (*conversation.CommitResult, error)

	// GetConversationItems returns all items of a branch ordered by sequence
	// number. An empty branch reads the currently active branch.
	GetConversationItems(ctx context.Context, id string, branch string) ([]conversation.Item, error)

	// GetMessages is GetConversationItems filtered to messages.
	GetMessages(ctx context.Context, id string, branch string) ([]*conversation.Message, error)

	// CreateBranch creates a branch rooted at the item with the given
	// sequence number, or at the latest item if no item matches.
	CreateBranch(ctx context.Context, id, name string, fromSequenceNumber int, creatorID string) (*conversation.BranchResult, error)

	// GetBranches lists the non-default branches of a conversation.
	GetBranches(ctx context.Context, id string) ([]*conversation.Branch, error)

	// DeleteBranch removes a branch. The main branch cannot be deleted.
	DeleteBranch(ctx context.Context, id, name string) error

	// Close releases any resources held by the driver.
	Close() error
}
