// Package mcp serves read-only conversation tools over the Model Context
// Protocol, backed by a storage.Driver.
package mcp

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/soapy/pkg/storage"
	"github.com/papercomputeco/soapy/pkg/utils"
)

type Config struct {
	// Driver serves every tool. Writes are never issued through it.
	Driver storage.Driver

	// Noop serves the protocol without registering any tool.
	Noop bool

	Logger *slog.Logger
}

func (c Config) validate() error {
	if c.Noop {
		return nil
	}
	if c.Driver == nil {
		return errors.New("storage driver is required")
	}
	if c.Logger == nil {
		return errors.New("logger is required")
	}
	return nil
}

type Server struct {
	config  Config
	handler http.Handler
}

// NewServer builds the MCP server and its stateless streamable HTTP handler.
func NewServer(c Config) (*Server, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	s := &Server{config: c}
	srv := mcp.NewServer(&mcp.Implementation{Name: "soapy", Version: utils.Version}, nil)
	if !c.Noop {
		s.registerTools(srv)
	}

	s.handler = mcp.NewStreamableHTTPHandler(
		func(*http.Request) *mcp.Server { return srv },
		&mcp.StreamableHTTPOptions{Stateless: true},
	)
	return s, nil
}

func (s *Server) registerTools(srv *mcp.Server) {
	mcp.AddTool(srv, &mcp.Tool{Name: listConversationsToolName, Description: listConversationsDescription}, s.handleListConversations)
	mcp.AddTool(srv, &mcp.Tool{Name: getItemsToolName, Description: getItemsDescription}, s.handleGetItems)
	mcp.AddTool(srv, &mcp.Tool{Name: listBranchesToolName, Description: listBranchesDescription}, s.handleListBranches)
}

// Handler returns the HTTP handler mounted at /mcp.
func (s *Server) Handler() http.Handler {
	return s.handler
}
