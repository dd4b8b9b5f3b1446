package mcp

import "fmt"

// ConnectionError reports a failure to launch or initialize a configured
// MCP server. The OS-level cause varies by platform (exec lookup errors,
// pipe failures, handshake errors); it is wrapped here so the surface
// shown to the user is uniform and always names the server.
type ConnectionError struct {
	Server string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("error conectando a servidor '%s': %v", e.Server, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// InvocationError reports a failed tools/call against a connected server.
// It is recoverable: the result is fed back to the model as a tool
// failure and the conversation continues.
type InvocationError struct {
	Server string
	Tool   string
	Err    error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("tool %s on server '%s': %v", e.Tool, e.Server, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}
