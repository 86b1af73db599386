package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/soapy/pkg/conversation"
)

// ItemsResponse carries the items of one branch in sequence order.
type ItemsResponse struct {
	ConversationID string                  `json:"conversationId"`
	Branch         string                  `json:"branch,omitempty"`
	Items          []conversation.Envelope `json:"items"`
	Count          int                     `json:"count"`
}

// MessagesResponse carries the messages of one branch in sequence order.
type MessagesResponse struct {
	ConversationID string                  `json:"conversationId"`
	Branch         string                  `json:"branch,omitempty"`
	Messages       []*conversation.Message `json:"messages"`
	Count          int                     `json:"count"`
}

// handleGetItems handles GET .../items?branch=<name>.
func (s *Server) handleGetItems(c *fiber.Ctx) error {
	id := conversationID(c)
	branch := c.Query("branch")

	items, err := s.driver.GetConversationItems(c.Context(), id, branch)
	if err != nil {
		return s.storageError(c, err, "read conversation items")
	}

	return c.JSON(ItemsResponse{
		ConversationID: id,
		Branch:         branch,
		Items:          conversation.NewEnvelopes(items),
		Count:          len(items),
	})
}

// handleGetMessages handles GET .../messages?branch=<name>.
func (s *Server) handleGetMessages(c *fiber.Ctx) error {
	id := conversationID(c)
	branch := c.Query("branch")

	msgs, err := s.driver.GetMessages(c.Context(), id, branch)
	if err != nil {
		return s.storageError(c, err, "read messages")
	}

	return c.JSON(MessagesResponse{
		ConversationID: id,
		Branch:         branch,
		Messages:       msgs,
		Count:          len(msgs),
	})
}

// handleAppendItem handles POST .../items with an item envelope body and
// dispatches on its type.
func (s *Server) handleAppendItem(c *fiber.Ctx) error {
	var env conversation.Envelope
	if err := c.BodyParser(&env); err != nil {
		return badRequest(c, "invalid request body")
	}

	item, err := env.Item()
	if err != nil {
		return badRequest(c, err.Error())
	}

	switch v := item.(type) {
	case *conversation.Message:
		return s.appendMessage(c, v)
	case *conversation.ToolCall:
		return s.appendToolCall(c, v)
	case *conversation.ToolResult:
		return s.appendToolResult(c, v)
	default:
		return badRequest(c, "unsupported item type")
	}
}

// handleAppendMessage handles POST .../messages?branch=<name>.
func (s *Server) handleAppendMessage(c *fiber.Ctx) error {
	var msg conversation.Message
	if err := c.BodyParser(&msg); err != nil {
		return badRequest(c, "invalid request body")
	}
	return s.appendMessage(c, &msg)
}

// handleAppendToolCall handles POST .../tool-calls?branch=<name>.
func (s *Server) handleAppendToolCall(c *fiber.Ctx) error {
	var call conversation.ToolCall
	if err := c.BodyParser(&call); err != nil {
		return badRequest(c, "invalid request body")
	}
	return s.appendToolCall(c, &call)
}

// handleAppendToolResult handles POST .../tool-results?branch=<name>.
func (s *Server) handleAppendToolResult(c *fiber.Ctx) error {
	var res conversation.ToolResult
	if err := c.BodyParser(&res); err != nil {
		return badRequest(c, "invalid request body")
	}
	return s.appendToolResult(c, &res)
}

func (s *Server) appendMessage(c *fiber.Ctx, msg *conversation.Message) error {
	if err := msg.Validate(); err != nil {
		return badRequest(c, err.Error())
	}
	for i := range msg.ToolCalls {
		if err := msg.ToolCalls[i].Validate(); err != nil {
			return badRequest(c, err.Error())
		}
	}

	result, err := s.driver.CommitMessage(c.Context(), conversationID(c), msg, c.Query("branch"))
	if err != nil {
		return s.storageError(c, err, "commit message")
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

func (s *Server) appendToolCall(c *fiber.Ctx, call *conversation.ToolCall) error {
	if err := call.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := s.driver.CommitToolCall(c.Context(), conversationID(c), call, c.Query("branch"))
	if err != nil {
		return s.storageError(c, err, "commit tool call")
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

func (s *Server) appendToolResult(c *fiber.Ctx, res *conversation.ToolResult) error {
	if err := res.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := s.driver.CommitToolResult(c.Context(), conversationID(c), res, c.Query("branch"))
	if err != nil {
		return s.storageError(c, err, "commit tool result")
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}
