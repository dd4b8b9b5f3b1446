package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/facuros/agentes/internal/buildinfo"
)

// protocolVersion is the MCP protocol version we advertise during initialization.
const protocolVersion = "2024-11-05"

// ToolDefinition is an MCP tool as returned by tools/list.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// ContentBlock is a single content item in a tools/call response.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// callToolResult is the result payload of a tools/call response.
type callToolResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

// toolsListResult is the result payload of a tools/list response.
type toolsListResult struct {
	Tools []ToolDefinition `json:"tools"`
}

// serverInfo is returned in the initialize response.
type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// serverCapabilities describes what an MCP server supports.
type serverCapabilities struct {
	Tools *struct{} `json:"tools,omitempty"`
}

// initializeResult is the full initialize response result.
type initializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	ServerInfo      serverInfo         `json:"serverInfo"`
	Capabilities    serverCapabilities `json:"capabilities"`
}

// Client connects to a single MCP server and provides typed access to
// the MCP protocol operations (initialize, tools/list, tools/call).
type Client struct {
	name      string
	transport Transport
	logger    *slog.Logger
	nextID    atomic.Int64

	mu           sync.RWMutex
	initialized  bool
	serverName   string
	serverVer    string
	toolsFetched bool
	tools        []ToolDefinition
}

// NewClient creates an MCP client for the given server. The transport
// determines how messages are delivered.
func NewClient(name string, transport Transport, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		name:      name,
		transport: transport,
		logger:    logger.With("mcp_server", name),
	}
}

// Name returns the configured server name this client is connected to.
func (c *Client) Name() string {
	return c.name
}

// Initialize performs the MCP handshake: sends an initialize request
// and then the notifications/initialized notification.
func (c *Client) Initialize(ctx context.Context) error {
	params := map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities":    map[string]any{},
		"clientInfo": map[string]any{
			"name":    "agentes",
			"version": buildinfo.Version,
		},
	}

	var result initializeResult
	if err := c.call(ctx, "initialize", params, &result); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	c.mu.Lock()
	c.initialized = true
	c.serverName = result.ServerInfo.Name
	c.serverVer = result.ServerInfo.Version
	c.mu.Unlock()

	c.logger.Info("MCP server initialized",
		"server_name", result.ServerInfo.Name,
		"server_version", result.ServerInfo.Version,
		"protocol_version", result.ProtocolVersion,
	)

	// Send the initialized notification to complete the handshake.
	if err := c.transport.Post(ctx, newNotification("notifications/initialized", nil)); err != nil {
		return fmt.Errorf("send initialized notification: %w", err)
	}

	return nil
}

// ListTools calls tools/list and returns the available tool definitions.
// The first successful answer is cached, including an empty catalog —
// a server with no tools is not re-queried.
func (c *Client) ListTools(ctx context.Context) ([]ToolDefinition, error) {
	c.mu.RLock()
	if c.toolsFetched {
		defer c.mu.RUnlock()
		return c.tools, nil
	}
	c.mu.RUnlock()

	var result toolsListResult
	if err := c.call(ctx, "tools/list", nil, &result); err != nil {
		return nil, fmt.Errorf("tools/list: %w", err)
	}

	c.mu.Lock()
	c.tools = result.Tools
	c.toolsFetched = true
	c.mu.Unlock()

	c.logger.Info("discovered MCP tools", "count", len(result.Tools))
	return result.Tools, nil
}

// CallTool invokes a tool by name with the given arguments. The result
// is extracted from the response content blocks as a single string.
// Non-text content blocks are described inline (e.g., "[image]").
// Failures are reported as *InvocationError.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	params := map[string]any{
		"name":      name,
		"arguments": args,
	}

	var result callToolResult
	if err := c.call(ctx, "tools/call", params, &result); err != nil {
		return "", &InvocationError{Server: c.name, Tool: name, Err: err}
	}

	text := extractText(result.Content)

	if result.IsError {
		return "", &InvocationError{Server: c.name, Tool: name, Err: fmt.Errorf("server reported error: %s", text)}
	}

	return text, nil
}

// Ping checks whether the MCP server is responsive.
func (c *Client) Ping(ctx context.Context) error {
	return c.call(ctx, "ping", nil, nil)
}

// Close shuts down the client and its transport.
func (c *Client) Close() error {
	c.logger.Info("closing MCP client")
	return c.transport.Close()
}

// call performs one request/response round trip, surfacing protocol
// errors and decoding the result into result when it is non-nil.
func (c *Client) call(ctx context.Context, method string, params, result any) error {
	resp, err := c.transport.Call(ctx, newRequest(c.nextID.Add(1), method, params))
	if err != nil {
		return err
	}
	if result == nil {
		if resp.Error != nil {
			return resp.Error
		}
		return nil
	}
	return resp.decode(result)
}

// extractText joins all text content blocks into a single string.
// Non-text blocks are represented as inline markers.
func extractText(blocks []ContentBlock) string {
	var parts []string
	for _, b := range blocks {
		switch b.Type {
		case "text":
			parts = append(parts, b.Text)
		case "image":
			parts = append(parts, "[image]")
		case "resource":
			parts = append(parts, "[resource]")
		default:
			parts = append(parts, fmt.Sprintf("[%s]", b.Type))
		}
	}
	return strings.Join(parts, "\n")
}
