package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/soapy/pkg/conversation"
	"github.com/papercomputeco/soapy/pkg/storage"
)

// CreateBranchRequest is the body of POST .../branches.
type CreateBranchRequest struct {
	Name string `json:"name"`

	// FromSequenceNumber is the item the branch diverges after. Zero or an
	// unknown number roots the branch at the latest item.
	FromSequenceNumber int    `json:"fromSequenceNumber"`
	CreatorID          string `json:"creatorId"`
}

// BranchesResponse lists the non-main branches of a conversation.
type BranchesResponse struct {
	ConversationID string                 `json:"conversationId"`
	Branches       []*conversation.Branch `json:"branches"`
	Count          int                    `json:"count"`
}

// handleListBranches handles GET .../branches.
func (s *Server) handleListBranches(c *fiber.Ctx) error {
	id := conversationID(c)

	branches, err := s.driver.GetBranches(c.Context(), id)
	if err != nil {
		return s.storageError(c, err, "list branches")
	}

	return c.JSON(BranchesResponse{
		ConversationID: id,
		Branches:       branches,
		Count:          len(branches),
	})
}

// handleCreateBranch handles POST .../branches.
func (s *Server) handleCreateBranch(c *fiber.Ctx) error {
	var req CreateBranchRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := storage.ValidateBranchName(req.Name); err != nil {
		return badRequest(c, err.Error())
	}
	if req.FromSequenceNumber < 0 {
		return badRequest(c, "fromSequenceNumber must not be negative")
	}

	result, err := s.driver.CreateBranch(c.Context(), conversationID(c), req.Name, req.FromSequenceNumber, req.CreatorID)
	if err != nil {
		return s.storageError(c, err, "create branch")
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

// handleDeleteBranch handles DELETE .../branches/<name>. Branch names may
// contain slashes.
func (s *Server) handleDeleteBranch(c *fiber.Ctx) error {
	if err := s.driver.DeleteBranch(c.Context(), conversationID(c), c.Params("*")); err != nil {
		return s.storageError(c, err, "delete branch")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
