// Package mcp implements MCP (Model Context Protocol) client support,
// allowing agentes to launch external MCP tool servers as subprocesses
// and expose their tools to the chat orchestrator.
//
// MCP uses JSON-RPC 2.0 over newline-delimited stdio. The client
// discovers tools via tools/list and invokes them via tools/call.
// Discovered tools are bridged into the tool registry so they appear as
// native tools to the model.
//
// This implementation covers the client/host side only — agentes does
// not act as an MCP server.
package mcp
