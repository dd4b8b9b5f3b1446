package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/facuros/agentes/internal/tools"
)

// sanitizeRe matches characters that are not lowercase alphanumeric or underscore.
var sanitizeRe = regexp.MustCompile(`[^a-z0-9_]`)

// BridgeTools registers a connection's discovered tools on the given
// registry. Tool names are namespaced as "mcp_{serverName}_{toolName}"
// to avoid collisions between servers.
//
// BridgeTools returns the number of tools registered.
func BridgeTools(conn *Connection, registry *tools.Registry, logger *slog.Logger) int {
	if logger == nil {
		logger = slog.Default()
	}

	for _, td := range conn.Tools {
		name := ToolName(conn.Config.Name, td.Name)
		registry.Register(bridgeTool(conn.Client, name, td))

		logger.Debug("bridged MCP tool",
			"mcp_name", td.Name,
			"registry_name", name,
			"server", conn.Config.Name,
		)
	}

	return len(conn.Tools)
}

// ToolName generates a namespaced registry tool name from an MCP server
// name and tool name. Both components are sanitized to contain only
// lowercase alphanumeric characters and underscores.
func ToolName(serverName, mcpToolName string) string {
	server := sanitize(serverName)
	tool := sanitize(mcpToolName)
	return fmt.Sprintf("mcp_%s_%s", server, tool)
}

// bridgeTool creates a registry tool that proxies calls to an MCP server.
func bridgeTool(client *Client, name string, td ToolDefinition) *tools.Tool {
	// Capture the original MCP tool name for the call.
	mcpName := td.Name

	return &tools.Tool{
		Name:        name,
		Description: td.Description,
		Parameters:  td.InputSchema,
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			return client.CallTool(ctx, mcpName, args)
		},
	}
}

// sanitize converts a name to lowercase and replaces non-alphanumeric
// characters (except underscore) with underscores. Consecutive
// underscores are collapsed and leading/trailing underscores are trimmed.
func sanitize(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, "-", "_")
	s = sanitizeRe.ReplaceAllString(s, "_")

	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}

	return strings.Trim(s, "_")
}
