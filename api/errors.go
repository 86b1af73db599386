package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/soapy/pkg/storage"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: msg})
}

// storageError maps driver errors to responses. Anything untyped is logged
// and reported as "failed to <op>".
func (s *Server) storageError(c *fiber.Ctx, err error, op string) error {
	switch {
	case storage.IsNotFound(err):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: err.Error()})

	case errors.Is(err, storage.ErrAlreadyExists),
		errors.Is(err, storage.ErrMainBranchProtected):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Error: err.Error()})

	case storage.IsInvalidOperation(err):
		return badRequest(c, err.Error())

	default:
		s.logger.Error("storage operation failed",
			"op", op,
			"path", c.Path(),
			"error", err,
		)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "failed to " + op,
		})
	}
}
