package api

import (
	"log/slog"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/soapy/api/mcp"
	"github.com/papercomputeco/soapy/pkg/storage"
)

// conversationPrefixes are the route prefixes addressing a single
// conversation. The namespaced form joins both parameters into one id.
var conversationPrefixes = []string{
	"/v1/conversations/:id",
	"/v1/namespaces/:namespace/conversations/:id",
}

// Server is the API server for the conversation store.
type Server struct {
	config Config
	driver storage.Driver
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new API server.
// The driver is injected so that callers decide whether writes are
// serialized (see the serial package).
func NewServer(config Config, driver storage.Driver, logger *slog.Logger) (*Server, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		driver: driver,
		logger: logger,
		app:    app,
	}

	mcpServer, err := mcp.NewServer(mcp.Config{
		Driver: driver,
		Noop:   config.DisableMCP,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	app.Get("/ping", s.handlePing)

	app.Post("/v1/conversations", s.handleCreateConversation)
	app.Get("/v1/conversations", s.handleListConversations)
	app.Post("/v1/namespaces/:namespace/conversations", s.handleCreateConversation)
	app.Get("/v1/namespaces/:namespace/conversations", s.handleListConversations)

	for _, prefix := range conversationPrefixes {
		app.Get(prefix, s.handleGetConversation)
		app.Delete(prefix, s.handleDeleteConversation)

		app.Get(prefix+"/items", s.handleGetItems)
		app.Post(prefix+"/items", s.handleAppendItem)
		app.Get(prefix+"/messages", s.handleGetMessages)
		app.Post(prefix+"/messages", s.handleAppendMessage)
		app.Post(prefix+"/tool-calls", s.handleAppendToolCall)
		app.Post(prefix+"/tool-results", s.handleAppendToolResult)

		app.Get(prefix+"/branches", s.handleListBranches)
		app.Post(prefix+"/branches", s.handleCreateBranch)
		app.Delete(prefix+"/branches/*", s.handleDeleteBranch)
	}

	mcpHandler := adaptor.HTTPHandler(mcpServer.Handler())
	app.All("/mcp", mcpHandler)
	app.All("/mcp/*", mcpHandler)

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		"listen", s.config.ListenAddr,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
