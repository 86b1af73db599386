// Package api provides an HTTP gateway for reading and appending to stored
// conversations.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8090")
	ListenAddr string

	// DisableMCP leaves the /mcp endpoint without tools.
	DisableMCP bool
}
