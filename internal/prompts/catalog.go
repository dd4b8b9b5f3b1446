package prompts

// ToolInfo is the prompt-facing summary of one callable tool.
type ToolInfo struct {
	Name        string
	Description string
}

// ServerTools groups the tools contributed by a single MCP server.
// Callers pass a slice so the rendered catalog has a stable order.
// Description is the configured server description, when present.
type ServerTools struct {
	Server      string
	Description string
	Tools       []ToolInfo
}
