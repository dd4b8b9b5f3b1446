package mcp

import "context"

// Transport delivers JSON-RPC messages to a single MCP server. The
// Client drives it; implementations own framing and correlation.
type Transport interface {
	// Call sends a request and blocks until the matching response
	// arrives or ctx is done.
	Call(ctx context.Context, req *Request) (*Response, error)

	// Post sends a notification. Nothing is read back.
	Post(ctx context.Context, notif *Request) error

	// Close releases the transport. For stdio this ends the subprocess.
	Close() error
}
