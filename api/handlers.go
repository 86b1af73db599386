package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/papercomputeco/soapy/pkg/conversation"
	"github.com/papercomputeco/soapy/pkg/storage"
	"github.com/papercomputeco/soapy/pkg/storage/gitrepo"
)

// CreateConversationRequest is the body of POST /v1/conversations.
type CreateConversationRequest struct {
	// ID is generated when empty.
	ID             string `json:"id"`
	OrganizationID string `json:"organizationId"`
	OwnerID        string `json:"ownerId"`
	MainBranch     string `json:"mainBranch"`
}

// ConversationsResponse lists conversations.
type ConversationsResponse struct {
	Conversations []*conversation.Conversation `json:"conversations"`
	Count         int                          `json:"count"`
}

// conversationID joins the namespace and id route parameters.
func conversationID(c *fiber.Ctx) string {
	id := c.Params("id")
	if ns := c.Params("namespace"); ns != "" {
		return ns + "/" + id
	}
	return id
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleCreateConversation handles POST /v1/conversations and its
// namespaced form.
func (s *Server) handleCreateConversation(c *fiber.Ctx) error {
	var req CreateConversationRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	if ns := c.Params("namespace"); ns != "" {
		if strings.Contains(id, "/") {
			return badRequest(c, "namespaced conversation ids must not contain '/'")
		}
		id = ns + "/" + id
	}
	if err := gitrepo.ValidateID(id); err != nil {
		return badRequest(c, err.Error())
	}
	if req.MainBranch != "" {
		if err := storage.ValidateBranchName(req.MainBranch); err != nil {
			return badRequest(c, err.Error())
		}
	}

	conv := &conversation.Conversation{
		ID:             id,
		OrganizationID: req.OrganizationID,
		OwnerID:        req.OwnerID,
		MainBranch:     req.MainBranch,
	}
	if err := s.driver.CreateConversation(c.Context(), conv); err != nil {
		return s.storageError(c, err, "create conversation")
	}

	created, err := s.driver.GetConversation(c.Context(), id)
	if err != nil {
		return s.storageError(c, err, "load conversation")
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// handleListConversations handles GET /v1/conversations. The namespaced
// form only returns conversations of that namespace.
func (s *Server) handleListConversations(c *fiber.Ctx) error {
	convs, err := s.driver.ListConversations(c.Context())
	if err != nil {
		return s.storageError(c, err, "list conversations")
	}

	if ns := c.Params("namespace"); ns != "" {
		filtered := make([]*conversation.Conversation, 0, len(convs))
		for _, conv := range convs {
			if strings.HasPrefix(conv.ID, ns+"/") {
				filtered = append(filtered, conv)
			}
		}
		convs = filtered
	}

	return c.JSON(ConversationsResponse{
		Conversations: convs,
		Count:         len(convs),
	})
}

// handleGetConversation handles GET /v1/conversations/:id.
func (s *Server) handleGetConversation(c *fiber.Ctx) error {
	conv, err := s.driver.GetConversation(c.Context(), conversationID(c))
	if err != nil {
		return s.storageError(c, err, "load conversation")
	}

	return c.JSON(conv)
}

// handleDeleteConversation handles DELETE /v1/conversations/:id. Deleting
// an unknown conversation succeeds.
func (s *Server) handleDeleteConversation(c *fiber.Ctx) error {
	if err := s.driver.DeleteConversation(c.Context(), conversationID(c)); err != nil {
		return s.storageError(c, err, "delete conversation")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
