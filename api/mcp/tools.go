package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/soapy/pkg/conversation"
)

var (
	listConversationsToolName    = "list_conversations"
	listConversationsDescription = "List stored conversations, newest first, with their owner, organization and main branch."

	getItemsToolName    = "get_conversation_items"
	getItemsDescription = "Return the messages, tool calls and tool results of a conversation branch ordered by sequence number."

	listBranchesToolName    = "list_branches"
	listBranchesDescription = "List the branches of a conversation with the sequence number they diverge at and their item count."
)

// ListConversationsInput is the input of list_conversations.
type ListConversationsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of conversations to return (default: all)"`
}

// ConversationSummary describes one stored conversation.
type ConversationSummary struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	OwnerID        string `json:"owner_id"`
	MainBranch     string `json:"main_branch"`
	CreatedAt      string `json:"created_at"`
}

// ListConversationsOutput is the output of list_conversations.
type ListConversationsOutput struct {
	Conversations []ConversationSummary `json:"conversations"`
	Count         int                   `json:"count"`
}

// GetItemsInput is the input of get_conversation_items.
type GetItemsInput struct {
	ConversationID string `json:"conversation_id" jsonschema:"the conversation id, optionally prefixed with a namespace"`
	Branch         string `json:"branch,omitempty" jsonschema:"branch to read (default: the active branch)"`
}

// Item is one conversation item flattened for tool output. Only the fields
// of its type are set.
type Item struct {
	Type           string `json:"type"`
	SequenceNumber int    `json:"sequence_number"`
	CommitHash     string `json:"commit_hash"`

	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`

	ToolName   string `json:"tool_name,omitempty"`
	Parameters string `json:"parameters,omitempty"`

	ToolCallSequenceNumber int    `json:"tool_call_sequence_number,omitempty"`
	Status                 string `json:"status,omitempty"`
	Result                 string `json:"result,omitempty"`
}

// GetItemsOutput is the output of get_conversation_items.
type GetItemsOutput struct {
	ConversationID string `json:"conversation_id"`
	Branch         string `json:"branch,omitempty"`
	Items          []Item `json:"items"`
	Count          int    `json:"count"`
}

// ListBranchesInput is the input of list_branches.
type ListBranchesInput struct {
	ConversationID string `json:"conversation_id" jsonschema:"the conversation id, optionally prefixed with a namespace"`
}

// BranchSummary describes one branch.
type BranchSummary struct {
	Name                 string `json:"name"`
	SourceSequenceNumber int    `json:"source_sequence_number"`
	MessageCount         int    `json:"message_count"`
	CreatorID            string `json:"creator_id,omitempty"`
	CreatedAt            string `json:"created_at"`
}

// ListBranchesOutput is the output of list_branches.
type ListBranchesOutput struct {
	ConversationID string          `json:"conversation_id"`
	Branches       []BranchSummary `json:"branches"`
	Count          int             `json:"count"`
}

func (s *Server) handleListConversations(ctx context.Context, _ *mcp.CallToolRequest, input ListConversationsInput) (*mcp.CallToolResult, ListConversationsOutput, error) {
	convs, err := s.config.Driver.ListConversations(ctx)
	if err != nil {
		s.config.Logger.Error("failed to list conversations", "error", err)
		return toolError("Failed to list conversations: %v", err), ListConversationsOutput{}, nil
	}

	if input.Limit > 0 && len(convs) > input.Limit {
		convs = convs[:input.Limit]
	}

	summaries := make([]ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		summaries = append(summaries, ConversationSummary{
			ID:             conv.ID,
			OrganizationID: conv.OrganizationID,
			OwnerID:        conv.OwnerID,
			MainBranch:     conv.MainBranch,
			CreatedAt:      conv.CreatedAt.Format(time.RFC3339),
		})
	}

	output := ListConversationsOutput{
		Conversations: summaries,
		Count:         len(summaries),
	}
	return toolResult(output), output, nil
}

func (s *Server) handleGetItems(ctx context.Context, _ *mcp.CallToolRequest, input GetItemsInput) (*mcp.CallToolResult, GetItemsOutput, error) {
	if input.ConversationID == "" {
		return toolError("conversation_id is required"), GetItemsOutput{}, nil
	}

	s.config.Logger.Debug("MCP get items request",
		"conversation_id", input.ConversationID,
		"branch", input.Branch,
	)

	items, err := s.config.Driver.GetConversationItems(ctx, input.ConversationID, input.Branch)
	if err != nil {
		return toolError("Failed to read conversation: %v", err), GetItemsOutput{}, nil
	}

	output := GetItemsOutput{
		ConversationID: input.ConversationID,
		Branch:         input.Branch,
		Items:          buildItems(items),
		Count:          len(items),
	}
	return toolResult(output), output, nil
}

func (s *Server) handleListBranches(ctx context.Context, _ *mcp.CallToolRequest, input ListBranchesInput) (*mcp.CallToolResult, ListBranchesOutput, error) {
	if input.ConversationID == "" {
		return toolError("conversation_id is required"), ListBranchesOutput{}, nil
	}

	branches, err := s.config.Driver.GetBranches(ctx, input.ConversationID)
	if err != nil {
		return toolError("Failed to list branches: %v", err), ListBranchesOutput{}, nil
	}

	summaries := make([]BranchSummary, 0, len(branches))
	for _, b := range branches {
		summaries = append(summaries, BranchSummary{
			Name:                 b.Name,
			SourceSequenceNumber: b.SourceSequenceNumber,
			MessageCount:         b.MessageCount,
			CreatorID:            b.CreatorID,
			CreatedAt:            b.CreatedAt.Format(time.RFC3339),
		})
	}

	output := ListBranchesOutput{
		ConversationID: input.ConversationID,
		Branches:       summaries,
		Count:          len(summaries),
	}
	return toolResult(output), output, nil
}

// buildItems flattens items for tool output, preserving order.
func buildItems(items []conversation.Item) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		view := Item{
			Type:           string(item.Kind()),
			SequenceNumber: item.Sequence(),
			CommitHash:     item.Commit(),
		}

		switch v := item.(type) {
		case *conversation.Message:
			view.Role = string(v.Role)
			view.Content = v.Content
		case *conversation.ToolCall:
			view.ToolName = v.ToolName
			if len(v.Parameters) > 0 {
				params, err := json.Marshal(v.Parameters)
				if err == nil {
					view.Parameters = string(params)
				}
			}
		case *conversation.ToolResult:
			view.ToolCallSequenceNumber = v.ToolCallSequenceNumber
			view.Status = string(v.Status)
			view.Result = string(v.Result)
		}

		out = append(out, view)
	}
	return out
}

func toolError(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}

// toolResult mirrors the structured output as JSON text for clients that
// only read content blocks.
func toolResult(output any) *mcp.CallToolResult {
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return toolError("Failed to serialize results: %v", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}
}
